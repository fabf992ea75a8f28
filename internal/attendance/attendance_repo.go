package attendance

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Exists(ctx context.Context, sessionID, studentID string) (bool, error)
	Create(ctx context.Context, a *AttendanceRecord) error
	FindBySession(ctx context.Context, sessionID string) ([]SessionRecordRow, error)
	FindByStudent(ctx context.Context, studentID string) ([]AttendanceRecord, error)
}

// SessionRecordRow is an attendance record joined with the student roster
// fields a lecturer needs when reviewing a session.
type SessionRecordRow struct {
	AttendanceRecord
	MatricNo string
	FullName string
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("session_id = ?", sessionID).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts through the transaction when one is attached so the record
// commits atomically with its outbox event.
func (r *repository) Create(ctx context.Context, a *AttendanceRecord) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO attendance_records (
				id, session_id, student_id, latitude, longitude,
				confidence, distance_meters, face_verified, location_verified,
				method, verification_status, latency_ms, marked_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		`,
			a.ID, a.SessionID, a.StudentID, a.Latitude, a.Longitude,
			a.Confidence, a.DistanceMeters, a.FaceVerified, a.LocationVerified,
			a.Method, a.VerificationStatus, a.LatencyMS, a.MarkedAt,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindBySession(ctx context.Context, sessionID string) ([]SessionRecordRow, error) {
	var rows []SessionRecordRow
	err := r.db.WithContext(ctx).
		Table("attendance_records ar").
		Select("ar.*, s.matric_no, s.full_name").
		Joins("JOIN students s ON s.id = ar.student_id").
		Where("ar.session_id = ?", sessionID).
		Order("ar.marked_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) FindByStudent(ctx context.Context, studentID string) ([]AttendanceRecord, error) {
	var rows []AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("marked_at DESC").
		Find(&rows).Error
	return rows, err
}
