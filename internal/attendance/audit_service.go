package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-attendance/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrMalformedAuditEvent marks an event that can never be projected, no
// matter how often it is redelivered. Consumers commit past it instead of
// retrying.
var ErrMalformedAuditEvent = errors.New("malformed attendance_marked event")

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type AuditRepository interface {
	Create(ctx context.Context, e *AuditEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, e *AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepository) ListBySession(ctx context.Context, sessionID string) ([]AuditEntry, error) {
	var rows []AuditEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Find(&rows).Error
	return rows, err
}

// AuditService projects attendance.marked events into a durable audit trail.
type AuditService interface {
	RecordMarked(ctx context.Context, event events.AttendanceMarkedEvent) error
}

type auditService struct {
	repo   AuditRepository
	logger *zap.Logger
}

func NewAuditService(repo AuditRepository, logger *zap.Logger) AuditService {
	if logger == nil {
		logger = zap.L()
	}
	return &auditService{repo: repo, logger: logger.Named("attendance.audit")}
}

func (s *auditService) RecordMarked(ctx context.Context, event events.AttendanceMarkedEvent) error {
	attendanceID, err := uuid.Parse(event.AttendanceID)
	if err != nil {
		s.logger.Error("attendance_marked event carries invalid attendance id",
			zap.String("attendance_id", event.AttendanceID),
		)
		return fmt.Errorf("%w: attendance_id %q", ErrMalformedAuditEvent, event.AttendanceID)
	}
	sessionID, err := uuid.Parse(event.SessionID)
	if err != nil {
		return fmt.Errorf("%w: session_id %q", ErrMalformedAuditEvent, event.SessionID)
	}
	studentID, err := uuid.Parse(event.StudentID)
	if err != nil {
		return fmt.Errorf("%w: student_id %q", ErrMalformedAuditEvent, event.StudentID)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return s.repo.Create(ctx, &AuditEntry{
		ID:               uuid.New(),
		AttendanceID:     attendanceID,
		SessionID:        sessionID,
		StudentID:        studentID,
		MatricNo:         event.MatricNo,
		FaceVerified:     event.FaceVerified,
		LocationVerified: event.LocationVerified,
		Confidence:       event.Confidence,
		DistanceMeters:   event.DistanceMeters,
		Method:           event.Method,
		OccurredAt:       occurredAt,
	})
}
