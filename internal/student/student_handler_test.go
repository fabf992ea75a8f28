package student_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"go-attendance/internal/student"
	studenterrors "go-attendance/internal/student/errors"
	studentMock "go-attendance/internal/student/mock"
)

func setupStudentRouter(studentID string, handler *student.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if studentID != "" {
			c.Set("student_id", studentID)
		}
		c.Next()
	})
	router.POST("/students/face", handler.RegisterFace)
	router.POST("/students/face/quality", handler.TestFaceQuality)
	router.GET("/students/face/status", handler.FaceStatus)
	router.GET("/students/me", handler.Me)
	return router
}

func TestHandler_RegisterFace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := studentMock.NewMockService(ctrl)
	handler := student.NewHandler(mockService)
	router := setupStudentRouter("student-1", handler)

	t.Run("Success", func(t *testing.T) {
		mockService.EXPECT().
			RegisterFace(gomock.Any(), "student-1", gomock.Any()).
			Return(student.FaceRegistrationResponse{
				StudentID:    "student-1",
				Method:       "advanced",
				QualityScore: 0.91,
				Backends:     []string{"arcface", "facenet"},
			}, nil)

		body, _ := json.Marshal(student.RegisterFaceRequest{ImageData: "aGVsbG8="})
		req := httptest.NewRequest(http.MethodPost, "/students/face", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var res map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &res)
		assert.Equal(t, "advanced", res["data"].(map[string]interface{})["method"])
	})

	t.Run("Missing Image Data", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/students/face", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Quality Too Low", func(t *testing.T) {
		mockService.EXPECT().
			RegisterFace(gomock.Any(), "student-1", gomock.Any()).
			Return(student.FaceRegistrationResponse{}, studenterrors.ErrFaceQualityTooLow)

		body, _ := json.Marshal(student.RegisterFaceRequest{ImageData: "aGVsbG8="})
		req := httptest.NewRequest(http.MethodPost, "/students/face", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("No Student Profile", func(t *testing.T) {
		anonRouter := setupStudentRouter("", handler)

		body, _ := json.Marshal(student.RegisterFaceRequest{ImageData: "aGVsbG8="})
		req := httptest.NewRequest(http.MethodPost, "/students/face", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		anonRouter.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_FaceStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := studentMock.NewMockService(ctrl)
	handler := student.NewHandler(mockService)
	router := setupStudentRouter("student-1", handler)

	mockService.EXPECT().
		FaceStatus(gomock.Any(), "student-1").
		Return(student.FaceStatusResponse{
			StudentID:      "student-1",
			FaceRegistered: true,
			Method:         "advanced",
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/students/face/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, true, res["data"].(map[string]interface{})["face_registered"])
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := studentMock.NewMockService(ctrl)
	handler := student.NewHandler(mockService)
	router := setupStudentRouter("student-1", handler)

	mockService.EXPECT().
		GetByID(gomock.Any(), "student-1").
		Return(student.StudentResponse{ID: "student-1", MatricNo: "CSC/2019/001"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/students/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
