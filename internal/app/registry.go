package app

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"go-attendance/internal/attendance"
	"go-attendance/internal/auth"
	"go-attendance/internal/course"
	"go-attendance/internal/facerec"
	"go-attendance/internal/facerec/opencv"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/rbac"
	"go-attendance/internal/rbac/infra"
	"go-attendance/internal/session"
	"go-attendance/internal/shared/counter"
	"go-attendance/internal/student"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// buildRecognitionStack registers every face backend whose model files are
// present. Missing models disable that backend only; an empty pool is a
// degraded-but-defined state handled at verification time.
func buildRecognitionStack(logger *zap.Logger) (*facerec.Analyzer, *facerec.Matcher) {
	pool := facerec.NewPool(logger)
	pool.Register(opencv.NewDetector("opencv", os.Getenv("FACE_DETECTOR_MODEL"), 0.7))

	embedderModels := map[string]string{
		"arcface": os.Getenv("FACE_ARCFACE_MODEL"),
		"facenet": os.Getenv("FACE_FACENET_MODEL"),
		"dlib":    os.Getenv("FACE_DLIB_MODEL"),
	}
	for key, path := range embedderModels {
		pool.RegisterEmbedder(key, opencv.NewEmbedder(key, path))
	}

	analyzer := facerec.NewAnalyzer(pool, 0, logger)
	matcher := facerec.NewMatcher(analyzer, nil, 0, logger)
	return analyzer, matcher
}

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	studentRepo := student.NewRepository(gormDB)
	courseRepo := course.NewRepository(gormDB)
	sessionRepo := session.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := rbacService.LoadPolicy(); err != nil {
		return err
	}

	// --- Face Recognition Core ---
	analyzer, matcher := buildRecognitionStack(logger)

	faceIndex := student.NewFaceIndex()
	registered, err := studentRepo.ListRegistered(context.Background())
	if err != nil {
		return err
	}
	faceIndex.BuildFromStudents(registered)
	logger.Info("face index built", zap.Int("templates", faceIndex.Count()))

	// --- Services ---
	authService := auth.NewService(authRepo, studentRepo)
	studentService := student.NewService(studentRepo, analyzer, faceIndex, outboxRepo, logger)
	courseService := course.NewService(courseRepo, studentRepo, rdb, logger)
	sessionService := session.NewService(sessionRepo, courseRepo, counterRepo, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, sessionRepo, courseRepo, studentRepo, matcher, outboxRepo, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	studentHandler := student.NewHandler(studentService)
	courseHandler := course.NewHandler(courseService)
	sessionHandler := session.NewHandler(sessionService)
	attendanceHandler := attendance.NewHandler(attendanceService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		student.RegisterRoutes(api, studentHandler, rbacService)
		course.RegisterRoutes(api, courseHandler, rbacService)
		session.RegisterRoutes(api, sessionHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb)
	}

	return nil
}
