package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// SetFields upserts the given fields, creating the profile when absent.
	SetFields(ctx context.Context, userID string, fields map[string]any, at time.Time) (*models.Profile, error)
}

type profileRepo struct {
	col *mongo.Collection
}

func NewProfileRepo(db *mongo.Database) ProfileRepository {
	return &profileRepo{col: db.Collection("student_profiles")}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) SetFields(ctx context.Context, userID string, fields map[string]any, at time.Time) (*models.Profile, error) {
	set := bson.M{"updated_at": at.UTC()}
	for k, v := range fields {
		set[k] = v
	}

	var p models.Profile
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"user_id": userID, "created_at": at.UTC()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
