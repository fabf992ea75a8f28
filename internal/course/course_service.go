package course

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	courseerrors "go-attendance/internal/course/errors"
	"go-attendance/internal/student"
	studenterrors "go-attendance/internal/student/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const CourseAllKey = "courses:all"

//go:generate mockgen -source=course_service.go -destination=mock/course_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, lecturerID string, req CreateCourseRequest) (CourseResponse, error)
	GetAll(ctx context.Context) ([]CourseResponse, error)
	GetByID(ctx context.Context, id string) (CourseResponse, error)
	GetByLecturer(ctx context.Context, lecturerID string) ([]CourseResponse, error)
	Enroll(ctx context.Context, courseID, studentID string) (EnrollmentResponse, error)
	EnrollByMatricNo(ctx context.Context, courseID, matricNo string) (EnrollmentResponse, error)
	ListEnrolled(ctx context.Context, courseID string) ([]EnrollmentResponse, error)
}

type service struct {
	repo        Repository
	studentRepo student.Repository
	rdb         *redis.Client
	sf          *singleflight.Group
	logger      *zap.Logger
}

func NewService(repo Repository, studentRepo student.Repository, rdb *redis.Client, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.L()
	}
	return &service{
		repo:        repo,
		studentRepo: studentRepo,
		rdb:         rdb,
		sf:          &singleflight.Group{},
		logger:      logger.Named("course.service"),
	}
}

func (s *service) Create(ctx context.Context, lecturerID string, req CreateCourseRequest) (CourseResponse, error) {
	lID, err := uuid.Parse(lecturerID)
	if err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidCourseID
	}

	unit := req.Unit
	if unit == 0 {
		unit = 2
	}

	row := &Course{
		ID:         uuid.New(),
		Code:       strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:      req.Title,
		Unit:       unit,
		Semester:   req.Semester,
		Session:    req.Session,
		LecturerID: lID,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return CourseResponse{}, courseerrors.ErrCourseCodeExists
		}
		return CourseResponse{}, err
	}

	s.invalidateListCache(ctx)

	s.logger.Info("course created",
		zap.String("course_id", row.ID.String()),
		zap.String("code", row.Code),
		zap.String("lecturer_id", lecturerID),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context) ([]CourseResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, CourseAllKey).Result()
		if err == nil {
			var resp []CourseResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(CourseAllKey, func() (interface{}, error) {
		rows, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(rows)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, CourseAllKey, jsonData, 30*time.Minute)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]CourseResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (CourseResponse, error) {
	row, err := s.findCourse(ctx, id)
	if err != nil {
		return CourseResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) GetByLecturer(ctx context.Context, lecturerID string) ([]CourseResponse, error) {
	rows, err := s.repo.FindByLecturer(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) Enroll(ctx context.Context, courseID, studentID string) (EnrollmentResponse, error) {
	row, err := s.findCourse(ctx, courseID)
	if err != nil {
		return EnrollmentResponse{}, err
	}

	sID, err := uuid.Parse(studentID)
	if err != nil {
		return EnrollmentResponse{}, studenterrors.ErrInvalidStudentID
	}

	if err := s.repo.Enroll(ctx, &Enrollment{
		ID:        uuid.New(),
		CourseID:  row.ID,
		StudentID: sID,
	}); err != nil {
		if isUniqueViolation(err) {
			return EnrollmentResponse{}, courseerrors.ErrAlreadyEnrolled
		}
		return EnrollmentResponse{}, err
	}

	s.logger.Info("student enrolled",
		zap.String("course_id", courseID),
		zap.String("student_id", studentID),
	)
	return EnrollmentResponse{CourseID: courseID, StudentID: studentID}, nil
}

func (s *service) EnrollByMatricNo(ctx context.Context, courseID, matricNo string) (EnrollmentResponse, error) {
	profile, err := s.studentRepo.FindByMatricNo(ctx, strings.ToUpper(strings.TrimSpace(matricNo)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EnrollmentResponse{}, studenterrors.ErrStudentNotFound
		}
		return EnrollmentResponse{}, err
	}

	resp, err := s.Enroll(ctx, courseID, profile.ID.String())
	if err != nil {
		return EnrollmentResponse{}, err
	}
	resp.MatricNo = profile.MatricNo
	resp.FullName = profile.FullName
	return resp, nil
}

func (s *service) ListEnrolled(ctx context.Context, courseID string) ([]EnrollmentResponse, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListEnrolled(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := make([]EnrollmentResponse, len(rows))
	for i, r := range rows {
		resp[i] = EnrollmentResponse{
			CourseID:  courseID,
			StudentID: r.StudentID,
			MatricNo:  r.MatricNo,
			FullName:  r.FullName,
		}
	}
	return resp, nil
}

func (s *service) findCourse(ctx context.Context, id string) (*Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, courseerrors.ErrInvalidCourseID
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, courseerrors.ErrCourseNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, CourseAllKey).Err(); err != nil {
		s.logger.Error("invalidate course list cache failed", zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}

func mapToResponse(c Course) CourseResponse {
	return CourseResponse{
		ID:         c.ID.String(),
		Code:       c.Code,
		Title:      c.Title,
		Unit:       c.Unit,
		Semester:   c.Semester,
		Session:    c.Session,
		LecturerID: c.LecturerID.String(),
	}
}

func mapToListResponse(rows []Course) []CourseResponse {
	resp := make([]CourseResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp
}
