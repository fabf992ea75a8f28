package attendance

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Mark(c *gin.Context) {
	studentID := c.GetString("student_id")
	if studentID == "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "No student profile linked to this account", nil)
		return
	}

	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Mark(c.Request.Context(), studentID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetSessionAttendance(c *gin.Context) {
	resp, err := h.service.GetSessionAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetMyAttendance(c *gin.Context) {
	studentID := c.GetString("student_id")
	if studentID == "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "No student profile linked to this account", nil)
		return
	}

	resp, err := h.service.GetMyAttendance(c.Request.Context(), studentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
