package session

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=session_repo.go -destination=mock/session_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	FindActiveAt(ctx context.Context, id string, at time.Time) (*Session, error)
	FindByCourse(ctx context.Context, courseID string) ([]Session, error)
	Deactivate(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindActiveAt(ctx context.Context, id string, at time.Time) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("is_active = true").
		Where("starts_at <= ? AND ends_at >= ?", at, at).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindByCourse(ctx context.Context, courseID string) ([]Session, error) {
	var rows []Session
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("starts_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
