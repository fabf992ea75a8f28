package student

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	students := r.Group("/students")
	students.Use(middleware.AuthMiddleware())
	{
		students.GET("/me", middleware.RBACAuthorize(rbacService, "student", "read_self"), h.Me)
		students.GET("", middleware.RBACAuthorize(rbacService, "student", "read"), h.List)
		students.GET("/:id", middleware.RBACAuthorize(rbacService, "student", "read"), h.GetByID)

		students.POST("/face", middleware.RBACAuthorize(rbacService, "face", "register"), middleware.RateLimitByUser(0.2, 3), h.RegisterFace)
		students.POST("/face/quality", middleware.RBACAuthorize(rbacService, "face", "register"), middleware.RateLimitByUser(0.5, 3), h.TestFaceQuality)
		students.GET("/face/status", middleware.RBACAuthorize(rbacService, "face", "read"), h.FaceStatus)
		students.DELETE("/face", middleware.RBACAuthorize(rbacService, "face", "delete"), h.UnregisterFace)

		students.POST("/:id/face", middleware.RBACAuthorize(rbacService, "face", "manage"), h.RegisterFace)
		students.DELETE("/:id/face", middleware.RBACAuthorize(rbacService, "face", "manage"), h.UnregisterFace)
	}
}
