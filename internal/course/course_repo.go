package course

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=course_repo.go -destination=mock/course_repo_mock.go -package=mock

type EnrolledStudent struct {
	StudentID string
	MatricNo  string
	FullName  string
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *Course) error
	FindAll(ctx context.Context) ([]Course, error)
	FindByID(ctx context.Context, id string) (*Course, error)
	FindByLecturer(ctx context.Context, lecturerID string) ([]Course, error)
	Enroll(ctx context.Context, e *Enrollment) error
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	ListEnrolled(ctx context.Context, courseID string) ([]EnrolledStudent, error)
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

func (r *repository) Create(ctx context.Context, c *Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Course, error) {
	var rows []Course
	err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Course, error) {
	var c Course
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindByLecturer(ctx context.Context, lecturerID string) ([]Course, error) {
	var rows []Course
	err := r.db.WithContext(ctx).
		Where("lecturer_id = ?", lecturerID).
		Order("code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Enroll(ctx context.Context, e *Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Enrollment{}).
		Where("course_id = ?", courseID).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListEnrolled(ctx context.Context, courseID string) ([]EnrolledStudent, error) {
	var rows []EnrolledStudent
	err := r.db.WithContext(ctx).
		Table("course_enrollments ce").
		Select("ce.student_id::text AS student_id, s.matric_no, s.full_name").
		Joins("JOIN students s ON s.id = ce.student_id").
		Where("ce.course_id = ?", courseID).
		Order("s.matric_no ASC").
		Scan(&rows).Error
	return rows, err
}
