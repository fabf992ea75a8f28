package session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultRadiusMeters = 100

// Session is a time-boxed attendance window anchored to a geofence. A
// session accepts verification attempts only while it is active and the
// current time falls inside [StartsAt, EndsAt].
type Session struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code         string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	CourseID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null"`
	Topic        string    `gorm:"type:varchar(255)"`
	StartsAt     time.Time `gorm:"not null"`
	EndsAt       time.Time `gorm:"not null"`
	CenterLat    float64   `gorm:"not null"`
	CenterLng    float64   `gorm:"not null"`
	RadiusMeters float64   `gorm:"not null;default:100"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Session) TableName() string {
	return "attendance_sessions"
}

// WindowContains reports whether t falls inside the session window.
func (s *Session) WindowContains(t time.Time) bool {
	return !t.Before(s.StartsAt) && !t.After(s.EndsAt)
}
