package app

import (
	"context"
	"fmt"

	"go-attendance/internal/attendance"
	"go-attendance/internal/auth"
	"go-attendance/internal/config"
	"go-attendance/internal/shared/connection"

	"gorm.io/gorm"
)

type stores struct {
	users      auth.Repository
	attendance attendance.Repository
	closers    []func()
}

// openStores picks exactly one backend for both repositories.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		users := auth.NewMemoryRepository()
		return &stores{users: users, attendance: attendance.NewMemoryRepository(users)}, nil

	case config.StorePostgres:
		dsn := connection.PostgresDSN(
			cfg.Database.Host,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.Port,
			cfg.Database.SSLMode,
		)
		return openGORMStores(connection.OpenPostgres(dsn))

	case config.StoreMySQL:
		return openGORMStores(connection.OpenMySQL(cfg.MySQL.DSN))

	case config.StoreMongo:
		db, err := connection.ConnectMongoWithRetry(cfg.Mongo.URI, cfg.Mongo.Database, connectRetries)
		if err != nil {
			return nil, err
		}
		closer := func() { _ = db.Client().Disconnect(context.Background()) }

		users, err := auth.NewMongoRepository(ctx, db)
		if err != nil {
			closer()
			return nil, err
		}
		records, err := attendance.NewMongoRepository(ctx, db)
		if err != nil {
			closer()
			return nil, err
		}
		return &stores{users: users, attendance: records, closers: []func(){closer}}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func openGORMStores(dialector gorm.Dialector) (*stores, error) {
	gormDB, err := connection.ConnectGORMWithRetry(dialector, connectRetries)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	closer := func() { _ = sqlDB.Close() }

	if err := gormDB.AutoMigrate(&auth.User{}, &attendance.Attendance{}); err != nil {
		closer()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &stores{
		users:      auth.NewRepository(gormDB),
		attendance: attendance.NewRepository(gormDB),
		closers:    []func(){closer},
	}, nil
}
