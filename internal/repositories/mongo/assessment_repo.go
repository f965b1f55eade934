package mongo

import (
	"context"
	"errors"

	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AssessmentRepository interface {
	Latest(ctx context.Context, userID string) (*models.Assessment, error)
}

type assessmentRepo struct {
	col *mongo.Collection
}

func NewAssessmentRepo(db *mongo.Database) AssessmentRepository {
	return &assessmentRepo{col: db.Collection("assessments")}
}

func (r *assessmentRepo) Latest(ctx context.Context, userID string) (*models.Assessment, error) {
	var a models.Assessment
	err := r.col.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
