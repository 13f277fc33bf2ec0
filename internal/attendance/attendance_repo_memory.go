package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/auth"
	autherrors "go-attendance/internal/auth/errors"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	records []Attendance
	users   auth.Repository
}

// NewMemoryRepository keeps records in an ordered slice; joins resolve
// owners through users.
func NewMemoryRepository(users auth.Repository) Repository {
	return &memoryRepository{users: users}
}

func (r *memoryRepository) OpenDay(ctx context.Context, userID string, date, at time.Time, status string) (*Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(userID, date); i >= 0 {
		rec := &r.records[i]
		if rec.CheckedIn() {
			return nil, attendanceerrors.ErrAlreadyCheckedIn
		}
		checkIn := at
		rec.CheckInTime = &checkIn
		rec.Status = status
		rec.UpdatedAt = at
		out := *rec
		return &out, nil
	}

	checkIn := at
	rec := Attendance{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        date,
		CheckInTime: &checkIn,
		Status:      status,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	r.records = append(r.records, rec)
	return &rec, nil
}

func (r *memoryRepository) CloseDay(ctx context.Context, id string, at time.Time, totalHours float64) (*Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		rec := &r.records[i]
		if rec.ID != id {
			continue
		}
		if rec.CheckedOut() {
			return nil, attendanceerrors.ErrAlreadyCheckedOut
		}
		checkOut := at
		rec.CheckOutTime = &checkOut
		rec.TotalHours = totalHours
		rec.UpdatedAt = at
		out := *rec
		return &out, nil
	}
	return nil, attendanceerrors.ErrAttendanceNotFound
}

func (r *memoryRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(userID, date); i >= 0 {
		out := r.records[i]
		return &out, nil
	}
	return nil, attendanceerrors.ErrAttendanceNotFound
}

func (r *memoryRepository) Find(ctx context.Context, q Query) ([]Attendance, error) {
	r.mu.RLock()
	out := make([]Attendance, 0)
	for i := range r.records {
		if q.Matches(&r.records[i]) {
			out = append(out, r.records[i])
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) FindJoined(ctx context.Context, q Query) ([]Attendance, error) {
	rows, err := r.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*auth.User)
	out := rows[:0]
	for _, row := range rows {
		owner, ok := owners[row.UserID]
		if !ok {
			u, err := r.users.GetByID(ctx, row.UserID)
			if err != nil && !errors.Is(err, autherrors.ErrUserNotFound) {
				return nil, err
			}
			owner = u
			owners[row.UserID] = u
		}
		if owner == nil {
			continue
		}
		row.User = owner
		out = append(out, row)
	}
	return out, nil
}

func (r *memoryRepository) indexOf(userID string, date time.Time) int {
	for i := range r.records {
		if r.records[i].UserID == userID && r.records[i].Date.Equal(date) {
			return i
		}
	}
	return -1
}
