package app

import (
	"context"
	"errors"

	"go-attendance/internal/auth"
	autherrors "go-attendance/internal/auth/errors"

	"go.uber.org/zap"
)

const demoPassword = "password123"

var demoUsers = []auth.RegisterRequest{
	{
		Name:       "John Employee",
		Email:      "emp1@example.com",
		Password:   demoPassword,
		Role:       auth.RoleEmployee,
		EmployeeID: "EMP001",
		Department: "Engineering",
	},
	{
		Name:       "Jane Manager",
		Email:      "manager@example.com",
		Password:   demoPassword,
		Role:       auth.RoleManager,
		EmployeeID: "MGR001",
		Department: "Management",
	},
}

// seedDemoUsers registers the demo accounts, skipping ones that exist.
func seedDemoUsers(ctx context.Context, authService auth.Service) error {
	log := zap.L().Named("app.seed")

	for _, req := range demoUsers {
		res, err := authService.Register(ctx, req)
		if errors.Is(err, autherrors.ErrEmailAlreadyRegistered) {
			continue
		}
		if err != nil {
			return err
		}
		log.Info("demo user seeded", zap.String("email", req.Email), zap.String("user_id", res.UserID))
	}
	return nil
}
