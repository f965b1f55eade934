package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/yoockh/studycounsel/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentRepository reads raw catalog records by collection name.
type DocumentRepository interface {
	FindByID(ctx context.Context, collection, id string) (map[string]any, error)
	Each(ctx context.Context, collection string, fn func(id string, doc map[string]any) error) error
}

type documentRepo struct {
	db *mongo.Database
}

func NewDocumentRepo(db *mongo.Database) DocumentRepository {
	return &documentRepo{db: db}
}

// idFilter matches an ObjectID when id is a valid hex id, else the raw string.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func (r *documentRepo) FindByID(ctx context.Context, collection, id string) (map[string]any, error) {
	var doc bson.M
	err := r.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc["_id"] = IDString(doc["_id"])
	return doc, nil
}

func (r *documentRepo) Each(ctx context.Context, collection string, fn func(id string, doc map[string]any) error) error {
	cur, err := r.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		id := IDString(doc["_id"])
		doc["_id"] = id
		if err := fn(id, doc); err != nil {
			return err
		}
	}
	return cur.Err()
}

func IDString(v any) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
