package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	"github.com/yoockh/studycounsel/internal/utils"
)

const (
	programmeQueryLimit  = 10
	universityQueryLimit = 5
)

type RespondInput struct {
	SessionID  string
	Message    string
	Profile    *models.Profile
	Assessment *models.Assessment
	Plan       *models.Plan
	// History is the prior transcript, oldest first, excluding Message.
	History []models.Message
}

type CounselorResponse struct {
	Answer       string               `json:"answer"`
	Sources      []models.Source      `json:"sources"`
	PlanDelta    *models.PlanDelta    `json:"plan_delta,omitempty"`
	ProfileDelta *models.ProfileDelta `json:"profile_delta,omitempty"`

	ProfileExtraction ExtractionStatus `json:"-"`
	// IntentExtraction is empty when the message was not a catalog query.
	IntentExtraction ExtractionStatus `json:"-"`
	NextQuestion     string           `json:"-"`
}

type CounselorService interface {
	// Respond always returns a response. When the completion fails the answer
	// is ApologyAnswer and the error is returned alongside it.
	Respond(ctx context.Context, in RespondInput) (*CounselorResponse, error)
}

type counselorService struct {
	llm       llm.Provider
	profiles  ProfileExtractor
	intents   IntentExtractor
	retriever CandidateRetriever
	tracker   *StateTracker
	cls       TopicClassifier
	log       *logrus.Logger
	m         *metrics.Metrics
}

func NewCounselorService(
	p llm.Provider,
	profiles ProfileExtractor,
	intents IntentExtractor,
	retriever CandidateRetriever,
	cls TopicClassifier,
	log *logrus.Logger,
	m *metrics.Metrics,
) CounselorService {
	return &counselorService{
		llm:       p,
		profiles:  profiles,
		intents:   intents,
		retriever: retriever,
		tracker:   NewStateTracker(cls),
		cls:       cls,
		log:       log,
		m:         m,
	}
}

func (s *counselorService) Respond(ctx context.Context, in RespondInput) (*CounselorResponse, error) {
	const op = "CounselorService.Respond"
	log := s.log.WithFields(logrus.Fields{"op": op, "session_id": in.SessionID})

	out := &CounselorResponse{Sources: []models.Source{}}

	extracted := s.profiles.Extract(ctx, in.Message, in.History)
	out.ProfileExtraction = extracted.Status
	delta := extracted.Value
	if !delta.IsEmpty() {
		out.ProfileDelta = &delta
	}

	// context only; persisting the delta is the caller's job
	var merged models.Profile
	if in.Profile != nil {
		merged = *in.Profile
	}
	merged = merged.Merge(&delta)

	var parts []string
	if in.Profile != nil || !delta.IsEmpty() {
		parts = append(parts, formatProfile(merged))
	}

	if s.cls.IsCatalogQuery(in.Message) {
		intent := s.intents.Extract(ctx, in.Message, in.History)
		out.IntentExtraction = intent.Status

		progs := s.retriever.QueryProgrammes(ctx, intent.Value, &merged, programmeQueryLimit)
		unis := s.retriever.QueryUniversities(ctx, intent.Value, &merged, universityQueryLimit)
		log.WithFields(logrus.Fields{"programmes": len(progs), "universities": len(unis)}).Debug("catalog candidates")

		if len(progs) > 0 {
			parts = append(parts, formatProgrammes(progs))
			for i, p := range progs {
				if i == programmeContextLimit {
					break
				}
				out.Sources = addSource(out.Sources, fmt.Sprintf("%s - %s", p.Title, p.UniversityName), p.SourceURL)
			}
		}
		if len(unis) > 0 {
			parts = append(parts, formatUniversities(unis))
			for i, u := range unis {
				if i == universityContextLimit {
					break
				}
				out.Sources = addSource(out.Sources, u.Name, u.Website())
			}
		}
	}

	if in.Assessment != nil {
		parts = append(parts, formatAssessment(in.Assessment))
	}
	if in.Plan != nil && len(in.Plan.Steps) > 0 {
		parts = append(parts, formatPlan(in.Plan))
	}
	if len(in.History) > 0 {
		parts = append(parts, formatTranscript(in.History))
	}

	state := s.tracker.DeriveState(in.History)
	missing := MissingProfileInfo(&merged)
	out.NextQuestion = NextQuestion(missing, state)

	system := counselorSystemPrompt + stateGuidance(missing, out.NextQuestion, state)

	fullContext := "No additional context available."
	if len(parts) > 0 {
		fullContext = strings.Join(parts, "\n")
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	prior := in.History
	if len(prior) > priorTurns {
		prior = prior[len(prior)-priorTurns:]
	}
	for _, h := range prior {
		role := llm.RoleAssistant
		if h.Sender == models.SenderUser {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: utils.Truncate(h.Text, priorTurnChars)})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Context:\n%s\n\nStudent's question: %s", fullContext, in.Message),
	})

	answer, err := s.llm.Complete(ctx, messages, llm.Options{Temperature: 0.7, MaxTokens: 1000})
	s.m.LLMCall("respond", err)
	if err != nil {
		log.WithError(err).Error("counselor completion failed")
		out.Answer = ApologyAnswer
		return out, utils.E(utils.CodeUnavailable, op, "completion failed", err)
	}
	out.Answer = strings.TrimSpace(answer)

	// Plan steps are only proposed for turns that got a real answer.
	if title, ok := s.cls.PlanningStep(in.Message); ok {
		out.PlanDelta = &models.PlanDelta{NewSteps: []models.PlanStep{{
			Title:  title,
			Status: models.StepStatusPending,
			Notes:  "Based on conversation",
		}}}
	}
	return out, nil
}
