package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Code       string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null"`
	Title      string    `gorm:"column:title;type:varchar(255);not null"`
	Unit       int       `gorm:"column:unit;not null;default:2"`
	Semester   string    `gorm:"column:semester;type:varchar(20);not null"`
	Session    string    `gorm:"column:session;type:varchar(20);not null"`
	LecturerID uuid.UUID `gorm:"column:lecturer_id;type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Course) TableName() string {
	return "courses"
}

type Enrollment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;uniqueIndex:uq_enrollment_course_student"`
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;not null;uniqueIndex:uq_enrollment_course_student"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Enrollment) TableName() string {
	return "course_enrollments"
}
