package attendance

import (
	"go-attendance/internal/domain"
	"go-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens middleware.TokenParser, rbacService middleware.RBACService) {
	att := r.Group("/attendance")
	att.Use(
		middleware.AuthMiddleware(tokens),
		middleware.ExtractUserID(),
		middleware.ContextLogger(),
	)

	self := middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionSelf)
	manage := middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionManage)

	att.POST("/checkin", self, middleware.RateLimitByUser(1, 3), handler.CheckIn)
	att.POST("/checkout", self, middleware.RateLimitByUser(1, 3), handler.CheckOut)
	att.GET("/my-history", self, handler.MyHistory)
	att.GET("/my-summary", self, handler.MySummary)
	att.GET("/today", self, handler.Today)

	att.GET("/all", manage, handler.GetAll)
	att.GET("/employee/:id", manage, handler.GetEmployeeHistory)
	att.GET("/summary", manage, handler.TeamSummary)
	att.GET("/today-status", manage, handler.TodayStatus)
	att.GET("/export", manage, handler.Export)
}
