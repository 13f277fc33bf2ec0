package dashboard

import (
	"go-attendance/internal/domain"
	"go-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens middleware.TokenParser, rbacService middleware.RBACService) {
	dash := r.Group("/dashboard")
	dash.Use(
		middleware.AuthMiddleware(tokens),
		middleware.ExtractUserID(),
		middleware.ContextLogger(),
	)

	dash.GET("/employee",
		middleware.RBACAuthorize(rbacService, domain.ResourceDashboard, domain.ActionSelf),
		handler.Employee,
	)
	dash.GET("/manager",
		middleware.RBACAuthorize(rbacService, domain.ResourceDashboard, domain.ActionManage),
		handler.Manager,
	)
}
