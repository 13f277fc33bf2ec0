package auth

import (
	"context"
	"sync"

	autherrors "go-attendance/internal/auth/errors"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users []User
}

// NewMemoryRepository keeps users in an ordered slice, scanned linearly.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Email == user.Email {
			return autherrors.ErrEmailAlreadyRegistered
		}
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *memoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *memoryRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if match(&r.users[i]) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, autherrors.ErrUserNotFound
}
