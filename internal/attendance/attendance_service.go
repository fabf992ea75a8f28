package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/course"
	"go-attendance/internal/events"
	"go-attendance/internal/facerec"
	"go-attendance/internal/geofence"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/session"
	sessionerrors "go-attendance/internal/session/errors"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/contextutil"
	"go-attendance/internal/student"
	studenterrors "go-attendance/internal/student/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	reasonFaceMismatch   = "face_mismatch"
	reasonNoFaceDetected = "no_face_detected"
	reasonMultipleFaces  = "multiple_faces"
	reasonUnverifiable   = "face_unverifiable"
	reasonOutOfRange     = "out_of_range"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Mark(ctx context.Context, studentID string, req MarkRequest) (AttendanceResponse, error)
	GetSessionAttendance(ctx context.Context, sessionID string) ([]SessionAttendanceResponse, error)
	GetMyAttendance(ctx context.Context, studentID string) ([]AttendanceResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	sessionRepo session.Repository
	courseRepo  course.Repository
	studentRepo student.Repository
	matcher     *facerec.Matcher
	outbox      kafka.OutboxRepository
	sf          *singleflight.Group
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	sessionRepo session.Repository,
	courseRepo course.Repository,
	studentRepo student.Repository,
	matcher *facerec.Matcher,
	outbox kafka.OutboxRepository,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.L()
	}
	return &service{
		db:          db,
		repo:        repo,
		sessionRepo: sessionRepo,
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
		matcher:     matcher,
		outbox:      outbox,
		sf:          &singleflight.Group{},
		logger:      logger.Named("attendance.service"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Mark runs one verification attempt end to end: active-session check,
// enrollment check, duplicate check, face match, geofence check, then the
// dual-veto decision.
// Face and location are always both evaluated so a rejection carries full
// diagnostics. Acceptance requires both to pass; the record and its outbox
// event commit in one transaction, and the unique (session_id, student_id)
// index settles concurrent duplicates.
func (s *service) Mark(ctx context.Context, studentID string, req MarkRequest) (AttendanceResponse, error) {
	started := s.now()

	if _, err := uuid.Parse(studentID); err != nil {
		return AttendanceResponse{}, studenterrors.ErrInvalidStudentID
	}

	point := geofence.Coordinate{Lat: *req.Latitude, Lng: *req.Longitude}
	if err := point.Validate(); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidCoordinate
	}

	sess, err := s.activeSession(ctx, req.SessionID, started)
	if err != nil {
		return AttendanceResponse{}, err
	}

	enrolled, err := s.courseRepo.IsEnrolled(ctx, sess.CourseID.String(), studentID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !enrolled {
		return AttendanceResponse{}, attendanceerrors.ErrNotEnrolled
	}

	exists, err := s.repo.Exists(ctx, req.SessionID, studentID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if exists {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyMarked
	}

	studentRow, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, studenterrors.ErrStudentNotFound
		}
		return AttendanceResponse{}, err
	}
	if !studentRow.FaceRegistered {
		return AttendanceResponse{}, studenterrors.ErrFaceNotRegistered
	}

	imageBytes, err := facerec.DecodeImageData(req.ImageData)
	if err != nil {
		return AttendanceResponse{}, apperror.New(apperror.CodeInvalidInput, "Image could not be decoded", 400)
	}

	faceDetail, faceOK := s.evaluateFace(studentRow, imageBytes)
	locResult, locOK := s.evaluateLocation(point, sess)

	rid := contextutil.GetRequestID(ctx)
	s.logger.Info("verification attempt evaluated",
		zap.String("request_id", rid),
		zap.String("session_id", req.SessionID),
		zap.String("student_id", studentID),
		zap.Bool("face_verified", faceOK),
		zap.Bool("location_verified", locOK),
		zap.Float64("confidence", faceDetail.Confidence),
		zap.Float64("distance_meters", locResult.DistanceMeters),
	)

	if !faceOK || !locOK {
		return AttendanceResponse{}, s.rejection(faceDetail, locResult, faceOK, locOK)
	}

	record := &AttendanceRecord{
		ID:                 uuid.New(),
		SessionID:          sess.ID,
		StudentID:          studentRow.ID,
		Latitude:           point.Lat,
		Longitude:          point.Lng,
		Confidence:         faceDetail.Confidence,
		DistanceMeters:     locResult.DistanceMeters,
		FaceVerified:       true,
		LocationVerified:   true,
		Method:             faceDetail.Method,
		VerificationStatus: StatusAccepted,
		LatencyMS:          s.now().Sub(started).Milliseconds(),
		MarkedAt:           s.now(),
	}

	if err := s.persistAccepted(ctx, rid, studentRow, record); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance accepted",
		zap.String("request_id", rid),
		zap.String("attendance_id", record.ID.String()),
		zap.String("session_id", req.SessionID),
		zap.String("matric_no", studentRow.MatricNo),
		zap.String("method", record.Method),
		zap.Int64("latency_ms", record.LatencyMS),
	)
	return mapToResponse(*record), nil
}

// activeSession collapses concurrent lookups for the same session: during a
// marking rush every student in the room resolves the same row.
func (s *service) activeSession(ctx context.Context, sessionID string, at time.Time) (*session.Session, error) {
	v, err, _ := s.sf.Do(sessionID, func() (interface{}, error) {
		return s.sessionRepo.FindActiveAt(ctx, sessionID, at)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessionerrors.ErrSessionNotFound
		}
		return nil, err
	}
	return v.(*session.Session), nil
}

// evaluateFace never returns an error: any failure mode becomes a
// not-verified verdict with a reason so the dual-veto decision can still
// combine it with the location outcome.
func (s *service) evaluateFace(row *student.Student, imageBytes []byte) (FaceDetail, bool) {
	detail := FaceDetail{Threshold: s.matcher.Threshold()}

	outcome, err := s.matcher.Verify(row.FaceTemplate(), imageBytes)
	if err != nil {
		detail.Reason = faceFailureReason(err)
		return detail, false
	}

	detail.Confidence = outcome.Confidence
	detail.Method = outcome.Method
	detail.Threshold = outcome.Threshold
	if !outcome.Match {
		detail.Reason = reasonFaceMismatch
		return detail, false
	}

	detail.Verified = true
	return detail, true
}

func (s *service) evaluateLocation(point geofence.Coordinate, sess *session.Session) (geofence.Result, bool) {
	center := geofence.Coordinate{Lat: sess.CenterLat, Lng: sess.CenterLng}
	result, err := geofence.Verify(point, center, sess.RadiusMeters)
	if err != nil {
		// both coordinates were validated upstream
		return geofence.Result{Status: geofence.StatusTooFar, AllowedRadius: sess.RadiusMeters}, false
	}
	return result, result.IsValid
}

func (s *service) rejection(face FaceDetail, loc geofence.Result, faceOK, locOK bool) error {
	var reasons []string
	if !faceOK {
		reasons = append(reasons, face.Reason)
	}
	if !locOK {
		reasons = append(reasons, reasonOutOfRange)
	}

	return attendanceerrors.ErrVerificationFailed.WithDetails(RejectionDetails{
		Reasons: reasons,
		Face:    &face,
		Location: &LocationDetail{
			Verified:       locOK,
			DistanceMeters: loc.DistanceMeters,
			AllowedRadius:  loc.AllowedRadius,
			Status:         loc.Status,
		},
	})
}

func (s *service) persistAccepted(ctx context.Context, rid string, row *student.Student, record *AttendanceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, record); err != nil {
		return mapInsertError(err)
	}

	event := events.AttendanceMarkedEvent{
		EventType:        "attendance.marked",
		AttendanceID:     record.ID.String(),
		SessionID:        record.SessionID.String(),
		StudentID:        record.StudentID.String(),
		MatricNo:         row.MatricNo,
		FaceVerified:     record.FaceVerified,
		LocationVerified: record.LocationVerified,
		Confidence:       record.Confidence,
		DistanceMeters:   record.DistanceMeters,
		Method:           record.Method,
		LatencyMS:        record.LatencyMS,
		OccurredAt:       record.MarkedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     rid,
		AggregateType: "attendance",
		AggregateID:   record.ID.String(),
		EventType:     event.EventType,
		Topic:         events.AttendanceMarkedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) GetSessionAttendance(ctx context.Context, sessionID string) ([]SessionAttendanceResponse, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, sessionerrors.ErrInvalidSessionID
	}

	rows, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := make([]SessionAttendanceResponse, len(rows))
	for i, r := range rows {
		resp[i] = SessionAttendanceResponse{
			AttendanceResponse: mapToResponse(r.AttendanceRecord),
			MatricNo:           r.MatricNo,
			FullName:           r.FullName,
		}
	}
	return resp, nil
}

func (s *service) GetMyAttendance(ctx context.Context, studentID string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return nil, studenterrors.ErrInvalidStudentID
	}

	rows, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func faceFailureReason(err error) string {
	var multiErr *facerec.MultipleFacesError
	switch {
	case errors.As(err, &multiErr):
		return reasonMultipleFaces
	case errors.Is(err, facerec.ErrNoFaceDetected):
		return reasonNoFaceDetected
	default:
		// ErrUnverifiable, ErrNoBackendsAvailable, and anything unexpected:
		// the face could not be verified, so say exactly that.
		return reasonUnverifiable
	}
}

func mapToResponse(a AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:                 a.ID.String(),
		SessionID:          a.SessionID.String(),
		StudentID:          a.StudentID.String(),
		Confidence:         a.Confidence,
		DistanceMeters:     a.DistanceMeters,
		FaceVerified:       a.FaceVerified,
		LocationVerified:   a.LocationVerified,
		Method:             a.Method,
		VerificationStatus: a.VerificationStatus,
		LatencyMS:          a.LatencyMS,
		MarkedAt:           a.MarkedAt,
	}
}
