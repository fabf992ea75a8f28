package attendance

import (
	"time"

	"github.com/google/uuid"
)

const StatusAccepted = "accepted"

// AttendanceRecord is the outcome of one accepted verification attempt.
// The composite unique index turns a concurrent duplicate attempt into a
// constraint violation instead of a second accepted record. Rows are never
// updated after insertion.
type AttendanceRecord struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SessionID          uuid.UUID `gorm:"column:session_id;type:uuid;not null;uniqueIndex:uq_attendance_session_student"`
	StudentID          uuid.UUID `gorm:"column:student_id;type:uuid;not null;uniqueIndex:uq_attendance_session_student"`
	Latitude           float64   `gorm:"column:latitude;not null"`
	Longitude          float64   `gorm:"column:longitude;not null"`
	Confidence         float64   `gorm:"column:confidence;not null"`
	DistanceMeters     float64   `gorm:"column:distance_meters;not null"`
	FaceVerified       bool      `gorm:"column:face_verified;not null"`
	LocationVerified   bool      `gorm:"column:location_verified;not null"`
	Method             string    `gorm:"column:method;type:varchar(30);not null"`
	VerificationStatus string    `gorm:"column:verification_status;type:varchar(20);not null;default:accepted"`
	LatencyMS          int64     `gorm:"column:latency_ms;not null"`
	MarkedAt           time.Time `gorm:"column:marked_at;type:timestamptz;not null"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// AuditEntry is the consumer-side projection of an attendance.marked event.
// AttendanceID is unique so replayed events never produce a second row.
type AuditEntry struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AttendanceID     uuid.UUID `gorm:"column:attendance_id;type:uuid;not null;uniqueIndex:uq_audit_attendance"`
	SessionID        uuid.UUID `gorm:"column:session_id;type:uuid;not null;index"`
	StudentID        uuid.UUID `gorm:"column:student_id;type:uuid;not null;index"`
	MatricNo         string    `gorm:"column:matric_no;type:varchar(30)"`
	FaceVerified     bool      `gorm:"column:face_verified;not null"`
	LocationVerified bool      `gorm:"column:location_verified;not null"`
	Confidence       float64   `gorm:"column:confidence;not null"`
	DistanceMeters   float64   `gorm:"column:distance_meters;not null"`
	Method           string    `gorm:"column:method;type:varchar(30)"`
	OccurredAt       time.Time `gorm:"column:occurred_at;type:timestamptz;not null"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (AuditEntry) TableName() string {
	return "attendance_audit"
}
