package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/yoockh/studycounsel/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingRepository keeps one vector per (collection, document) in a pgvector table.
type EmbeddingRepository interface {
	Upsert(ctx context.Context, e *models.Embedding) error
	ListByCollection(ctx context.Context, collection string) ([]models.Embedding, error)
}

type embeddingRepo struct {
	db *gorm.DB
}

func NewEmbeddingRepo(db *gorm.DB) EmbeddingRepository {
	return &embeddingRepo{db: db}
}

func (r *embeddingRepo) Upsert(ctx context.Context, e *models.Embedding) error {
	row, err := toRow(e)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection_name"}, {Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "metadata", "updated_at"}),
		}).
		Create(row).Error
}

func (r *embeddingRepo) ListByCollection(ctx context.Context, collection string) ([]models.Embedding, error) {
	var rows []models.EmbeddingRow
	err := r.db.WithContext(ctx).
		Select("collection_name", "document_id", "embedding", "created_at", "updated_at").
		Where("collection_name = ?", collection).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Embedding, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func toRow(e *models.Embedding) (*models.EmbeddingRow, error) {
	now := e.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = now
	}

	var md datatypes.JSON
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, err
		}
		md = datatypes.JSON(b)
	}

	return &models.EmbeddingRow{
		CollectionName: e.CollectionName,
		DocumentID:     e.DocumentID,
		Vector:         pgvector.NewVector(e.Vector),
		Metadata:       md,
		CreatedAt:      created,
		UpdatedAt:      now,
	}, nil
}

func fromRow(row models.EmbeddingRow) models.Embedding {
	e := models.Embedding{
		CollectionName: row.CollectionName,
		DocumentID:     row.DocumentID,
		Vector:         row.Vector.Slice(),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &e.Metadata)
	}
	return e
}
