package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/models"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
)

type CandidateRetriever interface {
	QueryProgrammes(ctx context.Context, intent models.Intent, profile *models.Profile, limit int) []models.Programme
	QueryUniversities(ctx context.Context, intent models.Intent, profile *models.Profile, limit int) []models.University
}

type candidateRetriever struct {
	catalog mongorepo.CatalogRepository
	country string
	log     *logrus.Logger
}

func NewCandidateRetriever(catalog mongorepo.CatalogRepository, universityCountry string, log *logrus.Logger) CandidateRetriever {
	return &candidateRetriever{catalog: catalog, country: universityCountry, log: log}
}

// ProgrammeFilterFor combines intent with profile preferences. A profile value
// is only used for a field the intent left unset.
func ProgrammeFilterFor(intent models.Intent, profile *models.Profile) models.ProgrammeFilter {
	f := models.ProgrammeFilter{
		DegreeType: strings.TrimSpace(intent.DegreeType),
		Title:      strings.TrimSpace(intent.Field),
		City:       strings.TrimSpace(intent.City),
	}
	if lang := strings.TrimSpace(intent.Language); lang != "" {
		f.Languages = mongorepo.LanguageVariants(lang)
	}
	if profile == nil {
		return f
	}
	if f.DegreeType == "" {
		f.DegreeType = degreeFromLevel(profile.DesiredStudyLevel)
	}
	if f.Title == "" {
		f.Title = strings.TrimSpace(profile.DesiredField)
	}
	if f.City == "" && len(profile.PreferredCities) > 0 {
		f.Cities = profile.PreferredCities
	}
	return f
}

func degreeFromLevel(level string) string {
	l := strings.ToLower(level)
	switch {
	case strings.Contains(l, "master"):
		return "Master"
	case strings.Contains(l, "bachelor"):
		return "Bachelor"
	case strings.Contains(l, "phd"), strings.Contains(l, "doctor"):
		return "PhD"
	}
	return ""
}

func UniversityFilterFor(intent models.Intent, profile *models.Profile, country string) models.UniversityFilter {
	f := models.UniversityFilter{
		Country: country,
		Region:  strings.TrimSpace(intent.City),
		Text:    strings.TrimSpace(strings.Join(intent.Keywords, " ")),
	}
	if f.Region == "" && profile != nil && len(profile.PreferredCities) > 0 {
		f.Regions = profile.PreferredCities
	}
	return f
}

func (r *candidateRetriever) QueryProgrammes(ctx context.Context, intent models.Intent, profile *models.Profile, limit int) []models.Programme {
	out, err := r.catalog.FindProgrammes(ctx, ProgrammeFilterFor(intent, profile), limit)
	if err != nil {
		r.log.WithError(err).Error("query programmes failed")
		return []models.Programme{}
	}
	return out
}

func (r *candidateRetriever) QueryUniversities(ctx context.Context, intent models.Intent, profile *models.Profile, limit int) []models.University {
	out, err := r.catalog.FindUniversities(ctx, UniversityFilterFor(intent, profile, r.country), limit)
	if err != nil {
		r.log.WithError(err).Error("query universities failed")
		return []models.University{}
	}
	return out
}
