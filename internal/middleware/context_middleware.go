package middleware

import (
	"go-attendance/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger attaches a request scoped logger (request_id, user_id, role)
// to the request context. Mount it after AuthMiddleware and ExtractUserID.
func ContextLogger(logger ...*zap.Logger) gin.HandlerFunc {
	base := zap.L().Named("http")
	if len(logger) > 0 && logger[0] != nil {
		base = logger[0]
	}

	return func(c *gin.Context) {
		// request id biasanya sudah di-set oleh RequestID()
		rid := c.GetString("request_id")
		if rid == "" {
			rid = c.GetHeader("X-Request-ID")
		}
		if rid == "" {
			rid = uuid.New().String()
			c.Header("X-Request-ID", rid)
		}

		uid := c.GetString("user_id_validated")
		role := c.GetString("role")

		reqLogger := base.With(
			zap.String("request_id", rid),
			zap.String("user_id", uid),
			zap.String("role", role),
		)

		// service/repo cukup baca lewat contextutil tanpa tahu Gin
		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithUserID(ctx, uid)
		ctx = contextutil.WithRole(ctx, role)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
