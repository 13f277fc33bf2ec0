package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
	StoreMongo    = "mongo"
)

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Server      struct {
		Port         string        `env:"PORT" envDefault:"3000"`
		ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
		IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	}
	Store struct {
		Driver string `env:"STORE_DRIVER" envDefault:"memory"`
	}
	Database struct {
		Host     string `env:"HOST" envDefault:"localhost"`
		User     string `env:"USER" envDefault:"postgres"`
		Password string `env:"PASSWORD"`
		Name     string `env:"NAME" envDefault:"attendance_system"`
		Port     string `env:"PORT" envDefault:"5432"`
		SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	} `envPrefix:"DB_"`
	MySQL struct {
		DSN string `env:"MYSQL_DSN"`
	}
	Mongo struct {
		URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
		Database string `env:"DATABASE" envDefault:"attendance_system"`
	} `envPrefix:"MONGODB_"`
	Redis struct {
		Addr              string        `env:"REDIS_ADDR"`
		DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"30s"`
	}
	Kafka struct {
		Broker          string `env:"BROKER"`
		AttendanceTopic string `env:"ATTENDANCE_TOPIC" envDefault:"hr.attendance.lifecycle.v1"`
		ConsumerGroup   string `env:"CONSUMER_GROUP" envDefault:"go-attendance-audit"`
	} `envPrefix:"KAFKA_"`
	JWT struct {
		Secret string        `env:"SECRET"`
		TTL    time.Duration `env:"TTL" envDefault:"168h"`
	} `envPrefix:"JWT_"`
	Attendance struct {
		// HH:MM; empty keeps every check-in "present"
		LateAfter string `env:"ATTENDANCE_LATE_AFTER"`
	}
	Seed struct {
		DemoUsers *bool `env:"SEED_DEMO_USERS"`
	}
}

// devSecret is only accepted when APP_ENV=development.
const devSecret = "dev-secret-change-me"

// Load reads .env (if any) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// cukup error pertama agar log lebih jelas
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres, StoreMongo:
	case StoreMySQL:
		if c.MySQL.DSN == "" {
			return errors.New("MYSQL_DSN is required when STORE_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWT.Secret = devSecret
	}

	if c.Attendance.LateAfter != "" {
		if _, err := time.Parse("15:04", c.Attendance.LateAfter); err != nil {
			return fmt.Errorf("ATTENDANCE_LATE_AFTER must be HH:MM: %w", err)
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SeedDemoUsers defaults to true for the memory store only.
func (c *Config) SeedDemoUsers() bool {
	if c.Seed.DemoUsers != nil {
		return *c.Seed.DemoUsers
	}
	return c.Store.Driver == StoreMemory
}
