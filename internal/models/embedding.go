package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Embedding is one stored vector, unique per (collection, document).
type Embedding struct {
	CollectionName string         `bson:"collection_name" json:"collection_name"`
	DocumentID     string         `bson:"document_id" json:"document_id"`
	Vector         []float32      `bson:"embedding,truncate" json:"embedding"`
	Metadata       map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

// EmbeddingRow is the postgres form of Embedding.
type EmbeddingRow struct {
	CollectionName string          `gorm:"column:collection_name;type:text;primaryKey"`
	DocumentID     string          `gorm:"column:document_id;type:text;primaryKey"`
	Vector         pgvector.Vector `gorm:"column:embedding;type:vector"`
	Metadata       datatypes.JSON  `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time       `gorm:"column:created_at;type:timestamptz"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;type:timestamptz"`
}

func (EmbeddingRow) TableName() string { return "embeddings" }

// ScoredDocument is a resolved catalog record with its similarity score.
type ScoredDocument struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Document   map[string]any `json:"document"`
	Score      float64        `json:"score"`
}
