package course

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	courses := r.Group("/courses")
	courses.Use(middleware.AuthMiddleware())
	{
		courses.POST("", middleware.RBACAuthorize(rbacService, "course", "create"), h.Create)
		courses.GET("", middleware.RBACAuthorize(rbacService, "course", "read"), h.GetAll)
		courses.GET("/mine", middleware.RBACAuthorize(rbacService, "course", "create"), h.Mine)
		courses.GET("/:id", middleware.RBACAuthorize(rbacService, "course", "read"), h.GetByID)
		courses.POST("/:id/enroll", middleware.RBACAuthorize(rbacService, "course", "enroll"), h.Enroll)
		courses.GET("/:id/students", middleware.RBACAuthorize(rbacService, "course", "manage"), h.ListEnrolled)
	}
}
