package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/studycounsel/internal/logger"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	"github.com/yoockh/studycounsel/internal/utils"
)

func intp(i int) *int { return &i }

func newTestCounselor(p *scriptedLLM, catalog *fakeCatalog) CounselorService {
	log := logger.Discard()
	return NewCounselorService(
		p,
		NewProfileExtractor(p, log, nil),
		NewIntentExtractor(p, log, nil),
		NewCandidateRetriever(catalog, "Germany", log),
		DefaultClassifier(),
		log, nil,
	)
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		programmes: []models.Programme{
			{Title: "Computer Science", DegreeType: "Master", UniversityName: "TU Berlin", City: "Berlin",
				Language: []string{"English"}, TuitionEURSemester: intp(0), DurationSemesters: intp(4),
				SourceURL: "https://www.tu.berlin/cs"},
			{Title: "Informatics", DegreeType: "Master", UniversityName: "HU Berlin", City: "Berlin",
				SourceURL: "https://www.tu.berlin/cs"},
		},
		universities: []models.University{
			{Name: "TU Berlin", StateProvince: "Berlin", WebPages: []string{"https://www.tu.berlin"}},
		},
	}
}

func TestRespondCatalogQuery(t *testing.T) {
	p := &scriptedLLM{
		profile: `{"nationality": "Indian"}`,
		intent:  `{"field": "Computer Science", "degree_type": "Master", "city": "Berlin", "keywords": ["computer science"]}`,
		answer:  "  TU Berlin offers an English-taught Master.  ",
	}
	catalog := testCatalog()
	svc := newTestCounselor(p, catalog)

	history := []models.Message{
		{Sender: models.SenderUser, Text: "Hi"},
		{Sender: models.SenderAssistant, Text: "Where are you from?"},
		{Sender: models.SenderUser, Text: "India"},
		{Sender: models.SenderAssistant, Text: "What do you want to study?"},
	}
	out, err := svc.Respond(context.Background(), RespondInput{
		SessionID: "s1",
		Message:   "I want to apply for a computer science master in Berlin",
		Profile:   &models.Profile{UserID: "u1", DesiredStudyLevel: "Master"},
		History:   history,
	})
	require.NoError(t, err)

	assert.Equal(t, "TU Berlin offers an English-taught Master.", out.Answer)
	assert.Equal(t, ExtractionOK, out.ProfileExtraction)
	assert.Equal(t, ExtractionOK, out.IntentExtraction)
	require.NotNil(t, out.ProfileDelta)
	assert.Equal(t, "Indian", *out.ProfileDelta.Nationality)

	assert.Equal(t, []models.Source{
		{Title: "Computer Science - TU Berlin", URL: "https://www.tu.berlin/cs"},
		{Title: "TU Berlin", URL: "https://www.tu.berlin"},
	}, out.Sources)

	require.NotNil(t, out.PlanDelta)
	require.Len(t, out.PlanDelta.NewSteps, 1)
	assert.Equal(t, "Prepare and submit applications", out.PlanDelta.NewSteps[0].Title)
	assert.Equal(t, models.StepStatusPending, out.PlanDelta.NewSteps[0].Status)

	assert.Equal(t, "Berlin", catalog.progFilter.City)
	assert.Equal(t, "Germany", catalog.uniFilter.Country)

	msgs := p.last()
	require.Len(t, msgs, 5)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, counselorSystemPrompt))
	assert.Equal(t, "Where are you from?", msgs[1].Content)
	assert.Equal(t, llm.RoleUser, msgs[2].Role)
	final := msgs[4].Content
	assert.Contains(t, final, "Nationality: Indian")
	assert.Contains(t, final, "Available Programmes in Database")
	assert.Contains(t, final, "Tuition: Free/Not specified")
	assert.Contains(t, final, "Duration: 4 semesters")
	assert.True(t, strings.HasSuffix(final, "Student's question: I want to apply for a computer science master in Berlin"))
}

func TestRespondSmallTalkSkipsCatalog(t *testing.T) {
	p := &scriptedLLM{profile: `{}`, answer: "Hello! Where are you from?"}
	catalog := testCatalog()
	svc := newTestCounselor(p, catalog)

	out, err := svc.Respond(context.Background(), RespondInput{SessionID: "s1", Message: "hello there"})
	require.NoError(t, err)

	assert.False(t, catalog.progQueried)
	assert.False(t, catalog.unisQueried)
	assert.Empty(t, out.IntentExtraction)
	assert.Nil(t, out.ProfileDelta)
	assert.Nil(t, out.PlanDelta)
	assert.Empty(t, out.Sources)
	assert.Equal(t, TagCurrentDegree, out.NextQuestion)
	assert.Contains(t, p.last()[1].Content, "No additional context available.")
}

func TestRespondApologisesOnCompletionFailure(t *testing.T) {
	p := &scriptedLLM{
		profile: `{"desired_field": "Business"}`,
		err:     errors.New("both providers down"),
	}
	svc := newTestCounselor(p, testCatalog())

	out, err := svc.Respond(context.Background(), RespondInput{
		SessionID: "s1",
		Message:   "I need to open a blocked account for my business studies",
	})
	require.Error(t, err)
	assert.Equal(t, utils.CodeUnavailable, utils.CodeOf(err))
	require.NotNil(t, out)
	assert.Equal(t, ApologyAnswer, out.Answer)

	require.NotNil(t, out.ProfileDelta)
	assert.Equal(t, "Business", *out.ProfileDelta.DesiredField)
	assert.Nil(t, out.PlanDelta)
}
