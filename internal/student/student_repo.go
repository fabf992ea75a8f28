package student

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=student_repo.go -destination=mock/student_repo_mock.go -package=mock

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Student) error
	FindByID(ctx context.Context, id string) (*Student, error)
	FindByMatricNo(ctx context.Context, matricNo string) (*Student, error)
	FindAll(ctx context.Context, page, limit int) ([]Student, int64, error)
	SaveTemplate(ctx context.Context, s *Student) error
	ClearTemplate(ctx context.Context, id string) error
	ListRegistered(ctx context.Context) ([]Student, error)
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

func (r *repository) Create(ctx context.Context, s *Student) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindByMatricNo(ctx context.Context, matricNo string) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).Where("matric_no = ?", matricNo).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindAll(ctx context.Context, page, limit int) ([]Student, int64, error) {
	var (
		rows  []Student
		total int64
	)

	q := r.db.WithContext(ctx).Model(&Student{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Offset((page - 1) * limit).Limit(limit)
	}
	err := q.Order("matric_no ASC").Find(&rows).Error
	return rows, total, err
}

func (r *repository) SaveTemplate(ctx context.Context, s *Student) error {
	return r.db.WithContext(ctx).Model(&Student{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"face_registered":     s.FaceRegistered,
			"face_method":         s.FaceMethod,
			"face_quality":        s.FaceQuality,
			"legacy_backend":      s.LegacyBackend,
			"legacy_embedding":    s.LegacyEmbedding,
			"advanced_embeddings": s.AdvancedEmbeddings,
			"face_registered_at":  s.FaceRegisteredAt,
		}).Error
}

func (r *repository) ClearTemplate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Student{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"face_registered":     false,
			"face_method":         "",
			"face_quality":        0,
			"legacy_backend":      "",
			"legacy_embedding":    nil,
			"advanced_embeddings": nil,
			"face_registered_at":  nil,
		}).Error
}

func (r *repository) ListRegistered(ctx context.Context) ([]Student, error) {
	var rows []Student
	err := r.db.WithContext(ctx).
		Where("face_registered = ?", true).
		Find(&rows).Error
	return rows, err
}
