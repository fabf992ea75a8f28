package attendance

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	attendances := r.Group("/attendance")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.POST("/mark",
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			middleware.RateLimitByUser(0.5, 3),
			middleware.Idempotency(rdb),
			h.Mark,
		)
		attendances.GET("/me", middleware.RBACAuthorize(rbacService, "attendance", "read_self"), h.GetMyAttendance)
		attendances.GET("/sessions/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetSessionAttendance)
	}
}
