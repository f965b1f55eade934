package mongo

import (
	"context"
	"time"

	"github.com/yoockh/studycounsel/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// ListRecent returns the newest n messages of a session, oldest first.
	ListRecent(ctx context.Context, sessionID string, n int) ([]models.Message, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Message, error)
}

type messageRepo struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepository {
	return &messageRepo{col: db.Collection("counseling_messages")}
}

func (r *messageRepo) Insert(ctx context.Context, m *models.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, m)
	return err
}

func (r *messageRepo) ListRecent(ctx context.Context, sessionID string, n int) ([]models.Message, error) {
	if n <= 0 {
		n = 10
	}
	// _id breaks ties between messages written in the same millisecond
	cur, err := r.col.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(n)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *messageRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 200
	}
	cur, err := r.col.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
