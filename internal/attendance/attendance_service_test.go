package attendance_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"go-attendance/internal/attendance"
	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/course"
	"go-attendance/internal/events"
	"go-attendance/internal/facerec"
	"go-attendance/internal/geofence"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/session"
	sessionerrors "go-attendance/internal/session/errors"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/student"
	studenterrors "go-attendance/internal/student/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	centerLat = 7.3775
	centerLng = 3.9470
)

type stubBackend struct {
	key        string
	confidence float64
	embedding  []float32
}

func (b *stubBackend) Key() string { return b.key }

func (b *stubBackend) Detect(img image.Image) ([]facerec.Region, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	return []facerec.Region{{
		BBox:       facerec.BBox{X: w/2 - 90, Y: h/2 - 90, Width: 180, Height: 180},
		Confidence: b.confidence,
		Backend:    b.key,
		Embedding:  b.embedding,
	}}, nil
}

func (b *stubBackend) Embed(bbox facerec.BBox, img image.Image) ([]float32, error) {
	return b.embedding, nil
}

type fakeAttendanceRepo struct {
	existsFn        func(ctx context.Context, sessionID, studentID string) (bool, error)
	createFn        func(ctx context.Context, a *attendance.AttendanceRecord) error
	findBySessionFn func(ctx context.Context, sessionID string) ([]attendance.SessionRecordRow, error)
	findByStudentFn func(ctx context.Context, studentID string) ([]attendance.AttendanceRecord, error)
}

func (f *fakeAttendanceRepo) WithTx(tx *sql.Tx) attendance.Repository { return f }
func (f *fakeAttendanceRepo) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	return f.existsFn(ctx, sessionID, studentID)
}
func (f *fakeAttendanceRepo) Create(ctx context.Context, a *attendance.AttendanceRecord) error {
	return f.createFn(ctx, a)
}
func (f *fakeAttendanceRepo) FindBySession(ctx context.Context, sessionID string) ([]attendance.SessionRecordRow, error) {
	return f.findBySessionFn(ctx, sessionID)
}
func (f *fakeAttendanceRepo) FindByStudent(ctx context.Context, studentID string) ([]attendance.AttendanceRecord, error) {
	return f.findByStudentFn(ctx, studentID)
}

type fakeSessionRepo struct {
	findActiveAtFn func(ctx context.Context, id string, at time.Time) (*session.Session, error)
}

func (f *fakeSessionRepo) WithTx(tx *sql.Tx) session.Repository { return f }
func (f *fakeSessionRepo) Create(ctx context.Context, s *session.Session) error {
	return nil
}
func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*session.Session, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeSessionRepo) FindActiveAt(ctx context.Context, id string, at time.Time) (*session.Session, error) {
	return f.findActiveAtFn(ctx, id, at)
}
func (f *fakeSessionRepo) FindByCourse(ctx context.Context, courseID string) ([]session.Session, error) {
	return nil, nil
}
func (f *fakeSessionRepo) Deactivate(ctx context.Context, id string) error { return nil }

type fakeCourseRepo struct {
	isEnrolledFn func(ctx context.Context, courseID, studentID string) (bool, error)
}

func (f *fakeCourseRepo) WithTx(tx *sql.Tx) course.Repository                { return f }
func (f *fakeCourseRepo) Create(ctx context.Context, c *course.Course) error { return nil }
func (f *fakeCourseRepo) FindAll(ctx context.Context) ([]course.Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*course.Course, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCourseRepo) FindByLecturer(ctx context.Context, lecturerID string) ([]course.Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) Enroll(ctx context.Context, e *course.Enrollment) error { return nil }
func (f *fakeCourseRepo) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	if f.isEnrolledFn != nil {
		return f.isEnrolledFn(ctx, courseID, studentID)
	}
	return true, nil
}
func (f *fakeCourseRepo) ListEnrolled(ctx context.Context, courseID string) ([]course.EnrolledStudent, error) {
	return nil, nil
}

type fakeStudentRepo struct {
	findByIDFn func(ctx context.Context, id string) (*student.Student, error)
}

func (f *fakeStudentRepo) WithTx(tx *sql.Tx) student.Repository                 { return f }
func (f *fakeStudentRepo) Create(ctx context.Context, s *student.Student) error { return nil }
func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*student.Student, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeStudentRepo) FindByMatricNo(ctx context.Context, matricNo string) (*student.Student, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeStudentRepo) FindAll(ctx context.Context, page, limit int) ([]student.Student, int64, error) {
	return nil, 0, nil
}
func (f *fakeStudentRepo) SaveTemplate(ctx context.Context, s *student.Student) error { return nil }
func (f *fakeStudentRepo) ClearTemplate(ctx context.Context, id string) error         { return nil }
func (f *fakeStudentRepo) ListRegistered(ctx context.Context) ([]student.Student, error) {
	return nil, nil
}

func encodedTestImage(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newMatcher(backends ...facerec.Detector) *facerec.Matcher {
	pool := facerec.NewPool(zap.NewNop())
	for _, b := range backends {
		pool.Register(b)
	}
	analyzer := facerec.NewAnalyzer(pool, 0, zap.NewNop())
	return facerec.NewMatcher(analyzer, nil, 0, zap.NewNop())
}

func matchingBackends() []facerec.Detector {
	return []facerec.Detector{
		&stubBackend{key: "arcface", confidence: 0.95, embedding: []float32{1, 0, 0}},
		&stubBackend{key: "facenet", confidence: 0.9, embedding: []float32{0, 1, 0}},
	}
}

func registeredStudent(id uuid.UUID) *student.Student {
	return &student.Student{
		ID:             id,
		MatricNo:       "CSC/2019/001",
		FullName:       "Ada Obi",
		FaceRegistered: true,
		FaceMethod:     facerec.MethodAdvanced,
		AdvancedEmbeddings: student.EmbeddingMap{
			"arcface": {1, 0, 0},
			"facenet": {0, 1, 0},
		},
	}
}

func activeSession(id uuid.UUID) *session.Session {
	now := time.Now().UTC()
	return &session.Session{
		ID:           id,
		Code:         "SES-000001",
		StartsAt:     now.Add(-30 * time.Minute),
		EndsAt:       now.Add(30 * time.Minute),
		CenterLat:    centerLat,
		CenterLng:    centerLng,
		RadiusMeters: 100,
		IsActive:     true,
	}
}

func ptr(v float64) *float64 { return &v }

func rejectionDetails(t *testing.T, err error) attendance.RejectionDetails {
	t.Helper()

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeVerificationFailed, appErr.Code)

	details, ok := appErr.Details.(attendance.RejectionDetails)
	assert.True(t, ok, "expected RejectionDetails, got %T", appErr.Details)
	return details
}

func TestService_Mark(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	studentID := uuid.New()

	newService := func(t *testing.T, repo attendance.Repository, backends []facerec.Detector) (attendance.Service, sqlmock.Sqlmock) {
		t.Helper()

		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		sessRepo := &fakeSessionRepo{
			findActiveAtFn: func(ctx context.Context, id string, at time.Time) (*session.Session, error) {
				return activeSession(sessionID), nil
			},
		}
		stuRepo := &fakeStudentRepo{
			findByIDFn: func(ctx context.Context, id string) (*student.Student, error) {
				return registeredStudent(studentID), nil
			},
		}

		svc := attendance.NewService(
			db,
			repo,
			sessRepo,
			&fakeCourseRepo{},
			stuRepo,
			newMatcher(backends...),
			kafka.NewOutboxRepository(db),
			zap.NewNop(),
		)
		return svc, mock
	}

	validReq := func(t *testing.T) attendance.MarkRequest {
		return attendance.MarkRequest{
			SessionID: sessionID.String(),
			ImageData: encodedTestImage(t),
			Latitude:  ptr(7.3776),
			Longitude: ptr(3.9471),
		}
	}

	t.Run("accepted when face and location both verify", func(t *testing.T) {
		var saved *attendance.AttendanceRecord
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return false, nil },
			createFn: func(ctx context.Context, a *attendance.AttendanceRecord) error {
				saved = a
				return nil
			},
		}
		svc, mock := newService(t, repo, matchingBackends())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO outbox_events").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		resp, err := svc.Mark(ctx, studentID.String(), validReq(t))

		assert.NoError(t, err)
		assert.True(t, resp.FaceVerified)
		assert.True(t, resp.LocationVerified)
		assert.Equal(t, attendance.StatusAccepted, resp.VerificationStatus)
		assert.Equal(t, facerec.MethodAdvanced, resp.Method)
		assert.Greater(t, resp.Confidence, 0.4)
		assert.Less(t, resp.DistanceMeters, 100.0)
		assert.NotNil(t, saved)
		assert.Equal(t, sessionID, saved.SessionID)
		assert.Equal(t, studentID, saved.StudentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected on distance with face still reported verified", func(t *testing.T) {
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return false, nil },
		}
		svc, _ := newService(t, repo, matchingBackends())

		req := validReq(t)
		req.Latitude = ptr(7.3850) // ~830 m north of center
		req.Longitude = ptr(centerLng)
		_, err := svc.Mark(ctx, studentID.String(), req)

		details := rejectionDetails(t, err)
		assert.Equal(t, []string{"out_of_range"}, details.Reasons)
		assert.True(t, details.Face.Verified)
		assert.False(t, details.Location.Verified)
		assert.Greater(t, details.Location.DistanceMeters, 100.0)
		assert.Equal(t, 100.0, details.Location.AllowedRadius)
		assert.Equal(t, geofence.StatusTooFar, details.Location.Status)
	})

	t.Run("rejected on face mismatch with location still reported verified", func(t *testing.T) {
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return false, nil },
		}
		impostor := []facerec.Detector{
			&stubBackend{key: "arcface", confidence: 0.95, embedding: []float32{-1, 0, 0}},
			&stubBackend{key: "facenet", confidence: 0.9, embedding: []float32{0, -1, 0}},
		}
		svc, _ := newService(t, repo, impostor)

		_, err := svc.Mark(ctx, studentID.String(), validReq(t))

		details := rejectionDetails(t, err)
		assert.Equal(t, []string{"face_mismatch"}, details.Reasons)
		assert.False(t, details.Face.Verified)
		assert.Less(t, details.Face.Confidence, 0.4)
		assert.True(t, details.Location.Verified)
	})

	t.Run("rejected on both with combined diagnostics", func(t *testing.T) {
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return false, nil },
		}
		impostor := []facerec.Detector{
			&stubBackend{key: "arcface", confidence: 0.95, embedding: []float32{-1, 0, 0}},
		}
		svc, _ := newService(t, repo, impostor)

		req := validReq(t)
		req.Latitude = ptr(7.3850)
		req.Longitude = ptr(centerLng)
		_, err := svc.Mark(ctx, studentID.String(), req)

		details := rejectionDetails(t, err)
		assert.Equal(t, []string{"face_mismatch", "out_of_range"}, details.Reasons)
		assert.False(t, details.Face.Verified)
		assert.False(t, details.Location.Verified)
	})

	t.Run("already marked", func(t *testing.T) {
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return true, nil },
		}
		svc, _ := newService(t, repo, matchingBackends())

		_, err := svc.Mark(ctx, studentID.String(), validReq(t))

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyMarked)
	})

	t.Run("duplicate race maps constraint violation to already marked", func(t *testing.T) {
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return false, nil },
			createFn: func(ctx context.Context, a *attendance.AttendanceRecord) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_session_student"}
			},
		}
		svc, mock := newService(t, repo, matchingBackends())

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Mark(ctx, studentID.String(), validReq(t))

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyMarked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("session not found or inactive", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		sessRepo := &fakeSessionRepo{
			findActiveAtFn: func(ctx context.Context, id string, at time.Time) (*session.Session, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := attendance.NewService(db, &fakeAttendanceRepo{}, sessRepo, &fakeCourseRepo{}, &fakeStudentRepo{},
			newMatcher(matchingBackends()...), kafka.NewOutboxRepository(db), zap.NewNop())

		_, markErr := svc.Mark(ctx, studentID.String(), validReq(t))

		assert.ErrorIs(t, markErr, sessionerrors.ErrSessionNotFound)
	})

	t.Run("not enrolled in the session course", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		sessRepo := &fakeSessionRepo{
			findActiveAtFn: func(ctx context.Context, id string, at time.Time) (*session.Session, error) {
				return activeSession(sessionID), nil
			},
		}
		courseRepo := &fakeCourseRepo{
			isEnrolledFn: func(ctx context.Context, courseID, sID string) (bool, error) {
				return false, nil
			},
		}
		svc := attendance.NewService(db, &fakeAttendanceRepo{}, sessRepo, courseRepo, &fakeStudentRepo{},
			newMatcher(matchingBackends()...), kafka.NewOutboxRepository(db), zap.NewNop())

		_, markErr := svc.Mark(ctx, studentID.String(), validReq(t))

		assert.ErrorIs(t, markErr, attendanceerrors.ErrNotEnrolled)
	})

	t.Run("face not registered blocks regardless of location", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		sessRepo := &fakeSessionRepo{
			findActiveAtFn: func(ctx context.Context, id string, at time.Time) (*session.Session, error) {
				return activeSession(sessionID), nil
			},
		}
		stuRepo := &fakeStudentRepo{
			findByIDFn: func(ctx context.Context, id string) (*student.Student, error) {
				return &student.Student{ID: studentID, MatricNo: "CSC/2019/001"}, nil
			},
		}
		repo := &fakeAttendanceRepo{
			existsFn: func(ctx context.Context, sID, stID string) (bool, error) { return false, nil },
		}
		svc := attendance.NewService(db, repo, sessRepo, &fakeCourseRepo{}, stuRepo,
			newMatcher(matchingBackends()...), kafka.NewOutboxRepository(db), zap.NewNop())

		_, markErr := svc.Mark(ctx, studentID.String(), validReq(t))

		assert.ErrorIs(t, markErr, studenterrors.ErrFaceNotRegistered)
	})

	t.Run("out of range claimed coordinate rejected before any lookup", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		svc := attendance.NewService(db, &fakeAttendanceRepo{}, &fakeSessionRepo{}, &fakeCourseRepo{}, &fakeStudentRepo{},
			newMatcher(matchingBackends()...), kafka.NewOutboxRepository(db), zap.NewNop())

		req := validReq(t)
		req.Latitude = ptr(97.0)
		_, markErr := svc.Mark(ctx, studentID.String(), req)

		assert.ErrorIs(t, markErr, attendanceerrors.ErrInvalidCoordinate)
	})
}

type fakeAuditRepo struct {
	createFn func(ctx context.Context, e *attendance.AuditEntry) error
}

func (f *fakeAuditRepo) Create(ctx context.Context, e *attendance.AuditEntry) error {
	return f.createFn(ctx, e)
}
func (f *fakeAuditRepo) ListBySession(ctx context.Context, sessionID string) ([]attendance.AuditEntry, error) {
	return nil, nil
}

func markedEvent(attendanceID, sessionID, studentID uuid.UUID) events.AttendanceMarkedEvent {
	return events.AttendanceMarkedEvent{
		EventType:        "attendance.marked",
		AttendanceID:     attendanceID.String(),
		SessionID:        sessionID.String(),
		StudentID:        studentID.String(),
		MatricNo:         "CSC/2019/001",
		FaceVerified:     true,
		LocationVerified: true,
		Confidence:       0.92,
		DistanceMeters:   12.6,
		Method:           facerec.MethodAdvanced,
		OccurredAt:       time.Now().UTC(),
	}
}

func TestAuditService_RecordMarked(t *testing.T) {
	attendanceID := uuid.New()
	sessionID := uuid.New()
	studentID := uuid.New()

	t.Run("projects event into audit row", func(t *testing.T) {
		var saved *attendance.AuditEntry
		repo := &fakeAuditRepo{
			createFn: func(ctx context.Context, e *attendance.AuditEntry) error {
				saved = e
				return nil
			},
		}
		svc := attendance.NewAuditService(repo, zap.NewNop())

		err := svc.RecordMarked(context.Background(), markedEvent(attendanceID, sessionID, studentID))

		assert.NoError(t, err)
		assert.Equal(t, attendanceID, saved.AttendanceID)
		assert.Equal(t, sessionID, saved.SessionID)
		assert.Equal(t, "CSC/2019/001", saved.MatricNo)
		assert.True(t, saved.FaceVerified)
	})

	t.Run("invalid attendance id rejected", func(t *testing.T) {
		svc := attendance.NewAuditService(&fakeAuditRepo{}, zap.NewNop())

		e := markedEvent(attendanceID, sessionID, studentID)
		e.AttendanceID = "nope"
		err := svc.RecordMarked(context.Background(), e)

		assert.ErrorIs(t, err, attendance.ErrMalformedAuditEvent)
	})

	t.Run("malformed event is not a duplicate", func(t *testing.T) {
		svc := attendance.NewAuditService(&fakeAuditRepo{}, zap.NewNop())

		e := markedEvent(attendanceID, sessionID, studentID)
		e.StudentID = "not-a-uuid"
		err := svc.RecordMarked(context.Background(), e)

		assert.ErrorIs(t, err, attendance.ErrMalformedAuditEvent)
		assert.False(t, attendance.IsUniqueAuditViolation(err))
	})

	t.Run("duplicate detection", func(t *testing.T) {
		dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_audit_attendance"}
		assert.True(t, attendance.IsUniqueAuditViolation(dup))
		assert.False(t, attendance.IsUniqueAuditViolation(gorm.ErrRecordNotFound))
	})
}
