package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-attendance/internal/course"
	courseerrors "go-attendance/internal/course/errors"
	sessionerrors "go-attendance/internal/session/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSessionRepo struct {
	createFn       func(ctx context.Context, s *Session) error
	findByIDFn     func(ctx context.Context, id string) (*Session, error)
	findActiveAtFn func(ctx context.Context, id string, at time.Time) (*Session, error)
	findByCourseFn func(ctx context.Context, courseID string) ([]Session, error)
	deactivateFn   func(ctx context.Context, id string) error
}

func (f *fakeSessionRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeSessionRepo) Create(ctx context.Context, s *Session) error {
	return f.createFn(ctx, s)
}
func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*Session, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeSessionRepo) FindActiveAt(ctx context.Context, id string, at time.Time) (*Session, error) {
	return f.findActiveAtFn(ctx, id, at)
}
func (f *fakeSessionRepo) FindByCourse(ctx context.Context, courseID string) ([]Session, error) {
	return f.findByCourseFn(ctx, courseID)
}
func (f *fakeSessionRepo) Deactivate(ctx context.Context, id string) error {
	return f.deactivateFn(ctx, id)
}

type fakeCourseRepo struct {
	findByIDFn func(ctx context.Context, id string) (*course.Course, error)
}

func (f *fakeCourseRepo) WithTx(tx *sql.Tx) course.Repository { return f }
func (f *fakeCourseRepo) Create(ctx context.Context, c *course.Course) error {
	return nil
}
func (f *fakeCourseRepo) FindAll(ctx context.Context) ([]course.Course, error) { return nil, nil }
func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*course.Course, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeCourseRepo) FindByLecturer(ctx context.Context, lecturerID string) ([]course.Course, error) {
	return nil, nil
}
func (f *fakeCourseRepo) Enroll(ctx context.Context, e *course.Enrollment) error { return nil }
func (f *fakeCourseRepo) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return false, nil
}
func (f *fakeCourseRepo) ListEnrolled(ctx context.Context, courseID string) ([]course.EnrolledStudent, error) {
	return nil, nil
}

type fakeCounterRepo struct {
	next int64
}

func (f *fakeCounterRepo) GetNextValue(ctx context.Context, scope, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

func TestSessionService_Create(t *testing.T) {
	lecturerID := uuid.New()
	courseID := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ownedCourse := &fakeCourseRepo{
		findByIDFn: func(ctx context.Context, id string) (*course.Course, error) {
			return &course.Course{ID: courseID, Code: "CSC401", LecturerID: lecturerID}, nil
		},
	}

	validReq := func() CreateSessionRequest {
		return CreateSessionRequest{
			CourseID:  courseID.String(),
			Topic:     "Consensus protocols",
			StartsAt:  start,
			EndsAt:    start.Add(time.Hour),
			CenterLat: 7.3775,
			CenterLng: 3.9470,
		}
	}

	t.Run("creates session with generated code and default radius", func(t *testing.T) {
		var saved *Session
		repo := &fakeSessionRepo{
			createFn: func(ctx context.Context, s *Session) error {
				saved = s
				return nil
			},
		}
		svc := NewService(repo, ownedCourse, &fakeCounterRepo{}, zap.NewNop())

		resp, err := svc.Create(context.Background(), lecturerID.String(), validReq())

		assert.NoError(t, err)
		assert.Equal(t, "SES-000001", resp.Code)
		assert.Equal(t, float64(DefaultRadiusMeters), resp.RadiusMeters)
		assert.True(t, resp.IsActive)
		assert.Equal(t, courseID.String(), resp.CourseID)
		assert.Equal(t, lecturerID, saved.CreatedBy)
	})

	t.Run("session codes are sequential", func(t *testing.T) {
		repo := &fakeSessionRepo{
			createFn: func(ctx context.Context, s *Session) error { return nil },
		}
		svc := NewService(repo, ownedCourse, &fakeCounterRepo{}, zap.NewNop())

		first, err := svc.Create(context.Background(), lecturerID.String(), validReq())
		assert.NoError(t, err)
		second, err := svc.Create(context.Background(), lecturerID.String(), validReq())
		assert.NoError(t, err)

		assert.Equal(t, "SES-000001", first.Code)
		assert.Equal(t, "SES-000002", second.Code)
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		svc := NewService(&fakeSessionRepo{}, ownedCourse, &fakeCounterRepo{}, zap.NewNop())

		req := validReq()
		req.EndsAt = req.StartsAt.Add(-time.Minute)
		_, err := svc.Create(context.Background(), lecturerID.String(), req)

		assert.ErrorIs(t, err, sessionerrors.ErrInvalidWindow)
	})

	t.Run("rejects out-of-range center", func(t *testing.T) {
		svc := NewService(&fakeSessionRepo{}, ownedCourse, &fakeCounterRepo{}, zap.NewNop())

		req := validReq()
		req.CenterLat = 91
		_, err := svc.Create(context.Background(), lecturerID.String(), req)

		assert.ErrorIs(t, err, sessionerrors.ErrInvalidCoordinate)
	})

	t.Run("rejects lecturer who does not own the course", func(t *testing.T) {
		svc := NewService(&fakeSessionRepo{}, ownedCourse, &fakeCounterRepo{}, zap.NewNop())

		_, err := svc.Create(context.Background(), uuid.NewString(), validReq())

		assert.ErrorIs(t, err, courseerrors.ErrNotCourseLecturer)
	})

	t.Run("course not found", func(t *testing.T) {
		missing := &fakeCourseRepo{
			findByIDFn: func(ctx context.Context, id string) (*course.Course, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(&fakeSessionRepo{}, missing, &fakeCounterRepo{}, zap.NewNop())

		_, err := svc.Create(context.Background(), lecturerID.String(), validReq())

		assert.ErrorIs(t, err, courseerrors.ErrCourseNotFound)
	})
}

func TestSessionService_Deactivate(t *testing.T) {
	lecturerID := uuid.New()
	sessionID := uuid.New()

	active := func() *Session {
		return &Session{ID: sessionID, Code: "SES-000007", CreatedBy: lecturerID, IsActive: true}
	}

	t.Run("owner closes session", func(t *testing.T) {
		deactivated := false
		repo := &fakeSessionRepo{
			findByIDFn: func(ctx context.Context, id string) (*Session, error) { return active(), nil },
			deactivateFn: func(ctx context.Context, id string) error {
				deactivated = true
				return nil
			},
		}
		svc := NewService(repo, &fakeCourseRepo{}, &fakeCounterRepo{}, zap.NewNop())

		err := svc.Deactivate(context.Background(), lecturerID.String(), sessionID.String())

		assert.NoError(t, err)
		assert.True(t, deactivated)
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		repo := &fakeSessionRepo{
			findByIDFn: func(ctx context.Context, id string) (*Session, error) { return active(), nil },
		}
		svc := NewService(repo, &fakeCourseRepo{}, &fakeCounterRepo{}, zap.NewNop())

		err := svc.Deactivate(context.Background(), uuid.NewString(), sessionID.String())

		assert.ErrorIs(t, err, sessionerrors.ErrNotSessionOwner)
	})

	t.Run("already inactive", func(t *testing.T) {
		row := active()
		row.IsActive = false
		repo := &fakeSessionRepo{
			findByIDFn: func(ctx context.Context, id string) (*Session, error) { return row, nil },
		}
		svc := NewService(repo, &fakeCourseRepo{}, &fakeCounterRepo{}, zap.NewNop())

		err := svc.Deactivate(context.Background(), lecturerID.String(), sessionID.String())

		assert.ErrorIs(t, err, sessionerrors.ErrSessionInactive)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := NewService(&fakeSessionRepo{}, &fakeCourseRepo{}, &fakeCounterRepo{}, zap.NewNop())

		err := svc.Deactivate(context.Background(), lecturerID.String(), "nope")

		assert.ErrorIs(t, err, sessionerrors.ErrInvalidSessionID)
	})
}

func TestSessionWindowContains(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s := &Session{StartsAt: start, EndsAt: start.Add(time.Hour)}

	assert.True(t, s.WindowContains(start))
	assert.True(t, s.WindowContains(start.Add(30*time.Minute)))
	assert.True(t, s.WindowContains(start.Add(time.Hour)))
	assert.False(t, s.WindowContains(start.Add(-time.Second)))
	assert.False(t, s.WindowContains(start.Add(time.Hour+time.Second)))
}
