package auth

import (
	"go-attendance/internal/auth/token"
	"go-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens *token.Manager) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitByIP(0.5, 5), handler.Register)
		auth.POST("/login", middleware.RateLimitByIP(1, 10), handler.Login)
		auth.GET("/me",
			middleware.AuthMiddleware(tokens),
			middleware.ExtractUserID(),
			middleware.ContextLogger(),
			handler.Me,
		)
	}
}
