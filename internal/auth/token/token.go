// Package token signs and verifies the HS256 bearer tokens handed out at login.
package token

import (
	"errors"
	"time"

	autherrors "go-attendance/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 7 * 24 * time.Hour

// Claims is the identity carried by a token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source, used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Generate(c Claims) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"user_id": c.UserID,
		"email":   c.Email,
		"role":    c.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(m.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Join(autherrors.ErrTokenGenerationFailed, err)
	}
	return signed, nil
}

// Parse returns autherrors.ErrInvalidToken for any malformed, forged or expired token.
func (m *Manager) Parse(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, autherrors.ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, autherrors.ErrInvalidToken
	}

	userID, _ := mc["user_id"].(string)
	role, _ := mc["role"].(string)
	email, _ := mc["email"].(string)
	if userID == "" || role == "" {
		return Claims{}, autherrors.ErrInvalidToken
	}

	return Claims{UserID: userID, Email: email, Role: role}, nil
}
