package dashboard

import (
	"context"
	"time"

	"go-attendance/internal/attendance"
	"go-attendance/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const ManagerKeyPrefix = "dashboard:manager:"

// ManagerKey is the cache key of the manager view for one day.
func ManagerKey(day time.Time) string {
	return ManagerKeyPrefix + day.Format("2006-01-02")
}

type cacheInvalidator struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCacheInvalidator drops the cached manager view for the day of every
// attendance event it receives.
func NewCacheInvalidator(rdb *redis.Client, logger ...*zap.Logger) attendance.EventPublisher {
	l := zap.L().Named("dashboard.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.cache")
	}
	return &cacheInvalidator{rdb: rdb, logger: l}
}

func (c *cacheInvalidator) PublishAttendanceEvent(ctx context.Context, event events.AttendanceEvent) error {
	key := ManagerKeyPrefix + event.Date
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Error("failed to invalidate dashboard cache", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
