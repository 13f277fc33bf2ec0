package app

import (
	"context"

	"go-attendance/internal/config"
	"go-attendance/internal/middleware"
	"go-attendance/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const connectRetries = 5

// BuildApp wires stores, optional redis/kafka and every module onto router.
// The returned cleanup closes whatever was opened.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")
	ctx := context.Background()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// 1. Setup Infrastructure
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, st.closers...)
	logger.Info("store ready", zap.String("driver", cfg.Store.Driver))

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, connectRetries)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
	} else {
		logger.Info("REDIS_ADDR empty, dashboard cache disabled")
	}

	var writer *kafkago.Writer
	if cfg.Kafka.Broker != "" {
		writer, err = connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, connectRetries)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, func() { _ = writer.Close() })
	} else {
		logger.Info("KAFKA_BROKER empty, attendance events are not published")
	}

	router.Use(middleware.RequestID())

	// 2. Register Modules & Routes
	if err := registerModules(ctx, router, moduleDeps{
		cfg:    cfg,
		stores: st,
		rdb:    rdb,
		writer: writer,
	}); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
