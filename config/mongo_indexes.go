package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

// EnsureMongoIndexes creates the indexes the counseling flow queries on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		"universities": {
			idx("by_name_state", bson.D{{Key: "name", Value: 1}, {Key: "state-province", Value: 1}}),
			idx("by_country", bson.D{{Key: "country", Value: 1}}),
			// $text queries need exactly one text index
			idx("text_name", bson.D{{Key: "name", Value: "text"}}),
		},
		"programmes": {
			idx("by_degree_type", bson.D{{Key: "degree_type", Value: 1}}),
			idx("by_language", bson.D{{Key: "language", Value: 1}}),
			idx("by_city", bson.D{{Key: "city", Value: 1}}),
			idx("by_university", bson.D{{Key: "university_id", Value: 1}}),
		},
		"immigration_rules": {
			idx("by_country_visa", bson.D{{Key: "country_code", Value: 1}, {Key: "visa_type", Value: 1}}),
		},
		"student_profiles": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("uniq_user_id").SetUnique(true),
			},
		},
		"assessments": {
			idx("by_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
		},
		"counseling_sessions": {
			{
				Keys:    bson.D{{Key: "session_id", Value: 1}},
				Options: options.Index().SetName("uniq_session_id").SetUnique(true),
			},
			idx("by_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
		},
		"counseling_messages": {
			idx("by_session_created", bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}),
		},
		"counseling_plans": {
			idx("by_user_session", bson.D{{Key: "user_id", Value: 1}, {Key: "session_id", Value: 1}}),
			idx("by_last_updated", bson.D{{Key: "last_updated_at", Value: -1}}),
		},
		"embeddings": {
			{
				Keys:    bson.D{{Key: "collection_name", Value: 1}, {Key: "document_id", Value: 1}},
				Options: options.Index().SetName("uniq_collection_document").SetUnique(true),
			},
		},
	}

	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
