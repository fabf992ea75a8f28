package student

import (
	"net/http"
	"strconv"

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

// targetStudentID resolves which student a request operates on. Students can
// only act on themselves; lecturers and admins pass an explicit id.
func targetStudentID(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.GetString("student_id")
}

func (h *Handler) Me(c *gin.Context) {
	studentID := c.GetString("student_id")
	if studentID == "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "No student profile linked to this account", nil)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), studentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, limit)
	response.Success(c, http.StatusOK, rows, &meta)
}

func (h *Handler) RegisterFace(c *gin.Context) {
	studentID := targetStudentID(c)
	if studentID == "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "No student profile linked to this account", nil)
		return
	}

	var req RegisterFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.RegisterFace(c.Request.Context(), studentID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) TestFaceQuality(c *gin.Context) {
	var req FaceQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.TestFaceQuality(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) FaceStatus(c *gin.Context) {
	studentID := targetStudentID(c)
	if studentID == "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "No student profile linked to this account", nil)
		return
	}

	resp, err := h.service.FaceStatus(c.Request.Context(), studentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UnregisterFace(c *gin.Context) {
	studentID := targetStudentID(c)
	if studentID == "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "No student profile linked to this account", nil)
		return
	}

	if err := h.service.UnregisterFace(c.Request.Context(), studentID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Face template removed.", nil)
}
