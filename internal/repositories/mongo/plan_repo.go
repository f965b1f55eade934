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

// PlanRepository addresses plans by (user, session). Step ids are only
// matched inside that plan.
type PlanRepository interface {
	Get(ctx context.Context, userID, sessionID string) (*models.Plan, error)
	Latest(ctx context.Context, userID string) (*models.Plan, error)
	Ensure(ctx context.Context, userID, sessionID, countryTarget string, at time.Time) (*models.Plan, error)
	PushSteps(ctx context.Context, userID, sessionID string, steps []models.PlanStep, at time.Time) error
	ReplaceStep(ctx context.Context, userID, sessionID string, step models.PlanStep, at time.Time) (bool, error)
	PullStep(ctx context.Context, userID, sessionID, stepID string, at time.Time) (bool, error)
	Touch(ctx context.Context, userID, sessionID string, at time.Time) error
}

type planRepo struct {
	col *mongo.Collection
}

func NewPlanRepo(db *mongo.Database) PlanRepository {
	return &planRepo{col: db.Collection("counseling_plans")}
}

func planKey(userID, sessionID string) bson.M {
	return bson.M{"user_id": userID, "session_id": sessionID}
}

func (r *planRepo) Get(ctx context.Context, userID, sessionID string) (*models.Plan, error) {
	return r.findOne(ctx, planKey(userID, sessionID), nil)
}

func (r *planRepo) Latest(ctx context.Context, userID string) (*models.Plan, error) {
	return r.findOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "last_updated_at", Value: -1}}))
}

func (r *planRepo) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Plan, error) {
	if opts == nil {
		opts = options.FindOne()
	}
	var p models.Plan
	err := r.col.FindOne(ctx, filter, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) Ensure(ctx context.Context, userID, sessionID, countryTarget string, at time.Time) (*models.Plan, error) {
	var p models.Plan
	err := r.col.FindOneAndUpdate(ctx,
		planKey(userID, sessionID),
		bson.M{
			"$setOnInsert": bson.M{
				"user_id":        userID,
				"session_id":     sessionID,
				"country_target": countryTarget,
				"plan_steps":     bson.A{},
				"created_at":     at.UTC(),
			},
			"$set": bson.M{"last_updated_at": at.UTC()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) PushSteps(ctx context.Context, userID, sessionID string, steps []models.PlanStep, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		planKey(userID, sessionID),
		bson.M{
			"$push": bson.M{"plan_steps": bson.M{"$each": steps}},
			"$set":  bson.M{"last_updated_at": at.UTC()},
		},
	)
	return err
}

func (r *planRepo) ReplaceStep(ctx context.Context, userID, sessionID string, step models.PlanStep, at time.Time) (bool, error) {
	filter := planKey(userID, sessionID)
	filter["plan_steps.step_id"] = step.StepID

	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"plan_steps.$": step, "last_updated_at": at.UTC()},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *planRepo) PullStep(ctx context.Context, userID, sessionID, stepID string, at time.Time) (bool, error) {
	filter := planKey(userID, sessionID)
	filter["plan_steps.step_id"] = stepID

	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"plan_steps": bson.M{"step_id": stepID}},
		"$set":  bson.M{"last_updated_at": at.UTC()},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *planRepo) Touch(ctx context.Context, userID, sessionID string, at time.Time) error {
	_, err := r.col.UpdateOne(ctx, planKey(userID, sessionID),
		bson.M{"$set": bson.M{"last_updated_at": at.UTC()}})
	return err
}
