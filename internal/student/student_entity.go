package student

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"go-attendance/internal/facerec"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingMap stores one embedding per recognition backend as JSONB.
type EmbeddingMap map[string][]float32

func (m EmbeddingMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *EmbeddingMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported embedding map source type")
	}

	return json.Unmarshal(raw, m)
}

type Student struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	MatricNo   string    `gorm:"column:matric_no;type:varchar(30);uniqueIndex;not null"`
	FullName   string    `gorm:"column:full_name;type:varchar(255);not null"`
	Department string    `gorm:"column:department;type:varchar(120)"`
	Level      string    `gorm:"column:level;type:varchar(10)"`

	// Biometric template. LegacyEmbedding backs the single-backend
	// comparison path; AdvancedEmbeddings backs the multi-backend fusion.
	FaceRegistered     bool             `gorm:"column:face_registered;not null;default:false"`
	FaceMethod         string           `gorm:"column:face_method;type:varchar(30)"`
	FaceQuality        float64          `gorm:"column:face_quality"`
	LegacyBackend      string           `gorm:"column:legacy_backend;type:varchar(30)"`
	LegacyEmbedding    *pgvector.Vector `gorm:"column:legacy_embedding;type:vector(128)"`
	AdvancedEmbeddings EmbeddingMap     `gorm:"column:advanced_embeddings;type:jsonb"`
	FaceRegisteredAt   *time.Time       `gorm:"column:face_registered_at;type:timestamptz"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}

// FaceTemplate assembles the stored biometric reference for the matcher.
func (s *Student) FaceTemplate() facerec.Template {
	t := facerec.Template{
		Advanced: s.AdvancedEmbeddings,
		Method:   s.FaceMethod,
	}
	if s.LegacyEmbedding != nil {
		t.Legacy = s.LegacyEmbedding.Slice()
		t.LegacyBackend = s.LegacyBackend
	}
	return t
}
