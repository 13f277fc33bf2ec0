package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "go-attendance/internal/auth/errors"
	"go-attendance/internal/auth/token"
	"go-attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	GetMe(ctx context.Context, userID string) (*UserResponse, error)
}

type service struct {
	repo   Repository
	tokens *token.Manager
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, tokens *token.Manager, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, tokens: tokens, now: time.Now, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
		req.Password == "" || req.Role == "" || strings.TrimSpace(req.EmployeeID) == "" {
		return RegisterResponse{}, autherrors.ErrMissingRequiredFields
	}
	if !ValidRole(req.Role) {
		return RegisterResponse{}, autherrors.ErrInvalidRole
	}

	// cek duplikat lebih dulu; unique index tetap menjaga race
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return RegisterResponse{}, autherrors.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, autherrors.ErrUserNotFound) {
		return RegisterResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResponse{}, err
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = DefaultDepartment
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Password:     string(hashed),
		Role:         req.Role,
		EmployeeCode: req.EmployeeID,
		Department:   department,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return RegisterResponse{}, err
	}

	log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return RegisterResponse{Message: "User registered successfully", UserID: user.ID}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	if email == "" || password == "" {
		return LoginResponse{}, autherrors.ErrCredentialsRequired
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return LoginResponse{}, autherrors.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	signed, err := s.tokens.Generate(token.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		Message:   "Login successful",
		Token:     signed,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      ToUserResponse(user),
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	return &resp, nil
}
