package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/llm"
)

type ProfileExtractor interface {
	Extract(ctx context.Context, message string, history []models.Message) Extraction[models.ProfileDelta]
}

type profileExtractor struct {
	x jsonExtractor
}

func NewProfileExtractor(p llm.Provider, log *logrus.Logger, m *metrics.Metrics) ProfileExtractor {
	return &profileExtractor{x: jsonExtractor{
		llm:  p,
		log:  log,
		m:    m,
		kind: "profile",
		opts: llm.Options{Temperature: 0.3, MaxTokens: 300},
	}}
}

const profileSystemPrompt = "Extract structured data from messages. Return valid JSON only, no markdown."

func (e *profileExtractor) Extract(ctx context.Context, message string, history []models.Message) Extraction[models.ProfileDelta] {
	prompt := fmt.Sprintf(`Extract student profile information from this message. Return ONLY a JSON object with these fields (null if not mentioned):
- nationality: country name
- country_of_residence: country they currently live in
- highest_education_level: "High School", "Bachelor", "Master", "PhD"
- highest_education_field: field of study
- desired_study_level: "Bachelor", "Master", "PhD", "Studienkolleg", "Language course"
- desired_field: field of study they want
- english_level: IELTS/TOEFL score or CEFR level (e.g., "IELTS 7.0" or "C1")
- german_level: German proficiency (e.g., "B2" or "TestDaF")
- gpa_or_marks: GPA or percentage
- preferred_cities: array of city names
- budget_funds: approximate funds available in EUR per year

Message: %s
%s
Return JSON only:`, message, historyBlock(history, 3, 0))

	return run(ctx, e.x, profileSystemPrompt, prompt, decodeProfileDelta)
}

func decodeProfileDelta(obj map[string]any) models.ProfileDelta {
	str := func(key string) *string {
		if s := docString(obj, key); s != "" {
			return &s
		}
		return nil
	}
	d := models.ProfileDelta{
		Nationality:           str("nationality"),
		CountryOfResidence:    str("country_of_residence"),
		HighestEducationLevel: str("highest_education_level"),
		HighestEducationField: str("highest_education_field"),
		GPAOrMarks:            str("gpa_or_marks"),
		DesiredStudyLevel:     str("desired_study_level"),
		DesiredField:          str("desired_field"),
		EnglishLevel:          str("english_level"),
		GermanLevel:           str("german_level"),
		BudgetFunds:           str("budget_funds"),
	}
	if s, ok := obj["preferred_cities"].(string); ok {
		d.PreferredCities = models.SplitCities(s)
	} else {
		d.PreferredCities = docStrings(obj, "preferred_cities")
	}
	return d
}
