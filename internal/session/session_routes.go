package session

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	sessions := r.Group("/sessions")
	sessions.Use(middleware.AuthMiddleware())
	{
		sessions.POST("", middleware.RBACAuthorize(rbacService, "session", "create"), h.Create)
		sessions.GET("", middleware.RBACAuthorize(rbacService, "session", "read"), h.GetByCourse)
		sessions.GET("/:id", middleware.RBACAuthorize(rbacService, "session", "read"), h.GetByID)
		sessions.DELETE("/:id", middleware.RBACAuthorize(rbacService, "session", "create"), h.Deactivate)
	}
}
