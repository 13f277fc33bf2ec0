package app

import (
	"context"
	"net/http"

	"go-attendance/internal/attendance"
	"go-attendance/internal/auth"
	"go-attendance/internal/auth/token"
	"go-attendance/internal/config"
	"go-attendance/internal/dashboard"
	"go-attendance/internal/rbac"
	"go-attendance/internal/rbac/infra"
	"go-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type moduleDeps struct {
	cfg    *config.Config
	stores *stores
	rdb    *redis.Client
	writer *kafkago.Writer
}

func registerModules(ctx context.Context, router *gin.Engine, deps moduleDeps) error {
	cfg := deps.cfg

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(rbac.NewStaticRepository(), enforcer)
	if err != nil {
		return err
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	policy, err := attendance.NewStatusPolicy(cfg.Attendance.LateAfter)
	if err != nil {
		return err
	}

	// cache invalidation dan kafka jalan lewat publisher yang sama
	var publishers []attendance.EventPublisher
	if deps.rdb != nil {
		publishers = append(publishers, dashboard.NewCacheInvalidator(deps.rdb))
	}
	if deps.writer != nil {
		publishers = append(publishers, attendance.NewKafkaEventPublisher(deps.writer, cfg.Kafka.AttendanceTopic))
	}

	// --- Services ---
	authService := auth.NewService(deps.stores.users, tokens)
	attendanceService := attendance.NewService(deps.stores.attendance, deps.stores.users, attendance.ServiceConfig{
		Policy:    policy,
		Publisher: attendance.NewFanoutPublisher(publishers...),
	})
	dashboardService := dashboard.NewService(deps.stores.attendance, deps.stores.users, deps.rdb, dashboard.Config{
		CacheTTL: cfg.Redis.DashboardCacheTTL,
	})

	if cfg.SeedDemoUsers() {
		if err := seedDemoUsers(ctx, authService); err != nil {
			return err
		}
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, !cfg.IsDevelopment())
	attendanceHandler := attendance.NewHandler(attendanceService)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"status": "Server is running!"}, nil)
		})
		auth.RegisterRoutes(api, authHandler, tokens)
		attendance.RegisterRoutes(api, attendanceHandler, tokens, rbacService)
		dashboard.RegisterRoutes(api, dashboardHandler, tokens, rbacService)
	}

	return nil
}
