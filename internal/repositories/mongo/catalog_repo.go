package mongo

import (
	"context"
	"regexp"
	"strings"

	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CatalogRepository interface {
	FindProgrammes(ctx context.Context, f models.ProgrammeFilter, limit int) ([]models.Programme, error)
	FindUniversities(ctx context.Context, f models.UniversityFilter, limit int) ([]models.University, error)
}

type catalogRepo struct {
	programmes   *mongo.Collection
	universities *mongo.Collection
}

func NewCatalogRepo(db *mongo.Database) CatalogRepository {
	return &catalogRepo{
		programmes:   db.Collection(models.CollectionProgrammes),
		universities: db.Collection(models.CollectionUniversities),
	}
}

// pattern builds a case-insensitive regex. Input is quoted so user text
// like "C++" cannot break the query.
func pattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(s)), Options: "i"}
}

// LanguageVariants lists the spellings a language may be stored under.
func LanguageVariants(lang string) []string {
	lang = strings.TrimSpace(lang)
	seen := map[string]bool{}
	var out []string
	for _, v := range []string{lang, strings.ToLower(lang), strings.ToUpper(lang), utils.Capitalize(lang)} {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// ProgrammeQuery translates a filter into a conjunctive programmes query.
func ProgrammeQuery(f models.ProgrammeFilter) bson.M {
	q := bson.M{}
	if f.DegreeType != "" {
		q["degree_type"] = pattern(f.DegreeType)
	}
	if f.Title != "" {
		q["title"] = pattern(f.Title)
	}
	if len(f.Languages) > 0 {
		q["language"] = bson.M{"$in": f.Languages}
	}
	switch {
	case f.City != "":
		q["city"] = pattern(f.City)
	case len(f.Cities) > 0:
		q["city"] = bson.M{"$in": f.Cities}
	}
	return q
}

func UniversityQuery(f models.UniversityFilter) bson.M {
	q := bson.M{}
	if f.Country != "" {
		q["country"] = f.Country
	}
	switch {
	case f.Region != "":
		q["state-province"] = pattern(f.Region)
	case len(f.Regions) > 0:
		q["state-province"] = bson.M{"$in": f.Regions}
	}
	if strings.TrimSpace(f.Text) != "" {
		q["$text"] = bson.M{"$search": f.Text}
	}
	return q
}

func (r *catalogRepo) FindProgrammes(ctx context.Context, f models.ProgrammeFilter, limit int) ([]models.Programme, error) {
	cur, err := r.programmes.Find(ctx, ProgrammeQuery(f), options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Programme{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) FindUniversities(ctx context.Context, f models.UniversityFilter, limit int) ([]models.University, error) {
	cur, err := r.universities.Find(ctx, UniversityQuery(f), options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.University{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
