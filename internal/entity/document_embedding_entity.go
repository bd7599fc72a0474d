package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentEmbedding struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Document       string    // text snapshot the vector was computed from
	EmbeddingValue []float32
	DocumentId     uuid.UUID `gorm:"type:uuid;index"`
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
