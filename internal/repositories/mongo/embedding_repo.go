package mongo

import (
	"context"
	"time"

	"github.com/yoockh/studycounsel/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EmbeddingRepository keeps one vector per (collection, document).
type EmbeddingRepository interface {
	Upsert(ctx context.Context, e *models.Embedding) error
	ListByCollection(ctx context.Context, collection string) ([]models.Embedding, error)
}

type embeddingRepo struct {
	col *mongo.Collection
}

func NewEmbeddingRepo(db *mongo.Database) EmbeddingRepository {
	return &embeddingRepo{col: db.Collection("embeddings")}
}

func (r *embeddingRepo) Upsert(ctx context.Context, e *models.Embedding) error {
	now := e.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"collection_name": e.CollectionName, "document_id": e.DocumentID},
		bson.M{
			"$set": bson.M{
				"embedding":  e.Vector,
				"metadata":   e.Metadata,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"collection_name": e.CollectionName,
				"document_id":     e.DocumentID,
				"created_at":      now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *embeddingRepo) ListByCollection(ctx context.Context, collection string) ([]models.Embedding, error) {
	cur, err := r.col.Find(ctx, bson.M{"collection_name": collection},
		options.Find().SetProjection(bson.M{"metadata": 0}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Embedding{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
