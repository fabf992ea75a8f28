package session

import (
	"context"
	"errors"
	"fmt"

	"go-attendance/internal/course"
	courseerrors "go-attendance/internal/course/errors"
	"go-attendance/internal/geofence"
	sessionerrors "go-attendance/internal/session/errors"
	"go-attendance/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionCodeCounter = "session_code"

//go:generate mockgen -source=session_service.go -destination=mock/session_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, lecturerID string, req CreateSessionRequest) (SessionResponse, error)
	GetByID(ctx context.Context, id string) (SessionResponse, error)
	GetByCourse(ctx context.Context, courseID string) ([]SessionResponse, error)
	Deactivate(ctx context.Context, lecturerID, id string) error
}

type service struct {
	repo        Repository
	courseRepo  course.Repository
	counterRepo counter.Repository
	logger      *zap.Logger
}

func NewService(repo Repository, courseRepo course.Repository, counterRepo counter.Repository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.L()
	}
	return &service{
		repo:        repo,
		courseRepo:  courseRepo,
		counterRepo: counterRepo,
		logger:      logger.Named("session.service"),
	}
}

func (s *service) Create(ctx context.Context, lecturerID string, req CreateSessionRequest) (SessionResponse, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return SessionResponse{}, sessionerrors.ErrInvalidWindow
	}

	center := geofence.Coordinate{Lat: req.CenterLat, Lng: req.CenterLng}
	if err := center.Validate(); err != nil {
		return SessionResponse{}, sessionerrors.ErrInvalidCoordinate
	}

	courseRow, err := s.courseRepo.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionResponse{}, courseerrors.ErrCourseNotFound
		}
		return SessionResponse{}, err
	}
	if courseRow.LecturerID.String() != lecturerID {
		return SessionResponse{}, courseerrors.ErrNotCourseLecturer
	}

	seq, err := s.counterRepo.GetNextValue(ctx, "sessions", sessionCodeCounter)
	if err != nil {
		return SessionResponse{}, err
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = DefaultRadiusMeters
	}

	row := &Session{
		ID:           uuid.New(),
		Code:         fmt.Sprintf("SES-%06d", seq),
		CourseID:     courseRow.ID,
		CreatedBy:    courseRow.LecturerID,
		Topic:        req.Topic,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		CenterLat:    req.CenterLat,
		CenterLng:    req.CenterLng,
		RadiusMeters: radius,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return SessionResponse{}, err
	}

	s.logger.Info("session opened",
		zap.String("session_id", row.ID.String()),
		zap.String("code", row.Code),
		zap.String("course_id", row.CourseID.String()),
		zap.Time("starts_at", row.StartsAt),
		zap.Time("ends_at", row.EndsAt),
		zap.Float64("radius_meters", row.RadiusMeters),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetByID(ctx context.Context, id string) (SessionResponse, error) {
	row, err := s.findSession(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) GetByCourse(ctx context.Context, courseID string) ([]SessionResponse, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, courseerrors.ErrInvalidCourseID
	}

	rows, err := s.repo.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := make([]SessionResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func (s *service) Deactivate(ctx context.Context, lecturerID, id string) error {
	row, err := s.findSession(ctx, id)
	if err != nil {
		return err
	}
	if row.CreatedBy.String() != lecturerID {
		return sessionerrors.ErrNotSessionOwner
	}
	if !row.IsActive {
		return sessionerrors.ErrSessionInactive
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("session closed",
		zap.String("session_id", id),
		zap.String("code", row.Code),
	)
	return nil
}

func (s *service) findSession(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sessionerrors.ErrInvalidSessionID
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessionerrors.ErrSessionNotFound
		}
		return nil, err
	}
	return row, nil
}

func mapToResponse(r Session) SessionResponse {
	return SessionResponse{
		ID:           r.ID.String(),
		Code:         r.Code,
		CourseID:     r.CourseID.String(),
		Topic:        r.Topic,
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		CenterLat:    r.CenterLat,
		CenterLng:    r.CenterLng,
		RadiusMeters: r.RadiusMeters,
		IsActive:     r.IsActive,
	}
}
