package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/models"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
	"github.com/yoockh/studycounsel/internal/utils"
)

const turnHistoryLimit = 10

type TurnResult struct {
	UserMessage      *models.Message `json:"user_message"`
	AssistantMessage *models.Message `json:"assistant_message"`
	ProfileUpdated   bool            `json:"profile_updated"`
	PlanUpdated      bool            `json:"plan_updated"`
	NextQuestion     string          `json:"next_question,omitempty"`
}

type TurnService interface {
	// HandleTurn persists the student's message, asks the counselor for a reply
	// and persists that too. When only the completion fails the result carries
	// the apology message and a CodeUnavailable error is returned with it.
	HandleTurn(ctx context.Context, userID, sessionID, text string) (*TurnResult, error)
}

type turnService struct {
	sessions    mongorepo.SessionRepository
	messages    mongorepo.MessageRepository
	profiles    mongorepo.ProfileRepository
	assessments mongorepo.AssessmentRepository
	plans       PlanService
	counselor   CounselorService
	log         *logrus.Logger
	m           *metrics.Metrics
	now         func() time.Time
}

type TurnDeps struct {
	Sessions    mongorepo.SessionRepository
	Messages    mongorepo.MessageRepository
	Profiles    mongorepo.ProfileRepository
	Assessments mongorepo.AssessmentRepository
	Plans       PlanService
	Counselor   CounselorService
	Log         *logrus.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

func NewTurnService(d TurnDeps) TurnService {
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &turnService{
		sessions:    d.Sessions,
		messages:    d.Messages,
		profiles:    d.Profiles,
		assessments: d.Assessments,
		plans:       d.Plans,
		counselor:   d.Counselor,
		log:         d.Log,
		m:           d.Metrics,
		now:         now,
	}
}

func (s *turnService) HandleTurn(ctx context.Context, userID, sessionID, text string) (res *TurnResult, err error) {
	const op = "TurnService.HandleTurn"
	start := time.Now()
	defer func() { s.m.ObserveTurn(turnOutcome(err), time.Since(start)) }()

	text = strings.TrimSpace(text)
	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	log := s.log.WithFields(logrus.Fields{"op": op, "user_id": userID, "session_id": sessionID})

	if _, err := s.sessions.GetForUser(ctx, sessionID, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}

	in := RespondInput{SessionID: sessionID, Message: text}

	if in.Profile, err = optional(s.profiles.GetByUserID(ctx, userID)); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}
	if in.Assessment, err = optional(s.assessments.Latest(ctx, userID)); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load assessment", err)
	}
	if in.Plan, err = s.plans.GetPlan(ctx, userID, sessionID); err != nil {
		if utils.CodeOf(err) != utils.CodeNotFound {
			return nil, utils.E(utils.CodeInternal, op, "failed to load plan", err)
		}
		in.Plan = nil
	}
	if in.History, err = s.messages.ListRecent(ctx, sessionID, turnHistoryLimit); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}

	userMsg := &models.Message{
		SessionID:   sessionID,
		UserID:      userID,
		Sender:      models.SenderUser,
		MessageType: models.MessageTypeQuestion,
		Text:        text,
		Sources:     []models.Source{},
		CreatedAt:   s.now(),
	}
	if err := s.messages.Insert(ctx, userMsg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save message", err)
	}

	resp, respondErr := s.counselor.Respond(ctx, in)

	at := s.now()
	if !at.After(userMsg.CreatedAt) {
		at = userMsg.CreatedAt.Add(time.Millisecond)
	}
	reply := &models.Message{
		SessionID:   sessionID,
		UserID:      userID,
		Sender:      models.SenderAssistant,
		MessageType: models.MessageTypeAnswer,
		Text:        resp.Answer,
		Sources:     resp.Sources,
		CreatedAt:   at,
	}
	if err := s.messages.Insert(ctx, reply); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save reply", err)
	}
	if err := s.sessions.Touch(ctx, sessionID, at); err != nil {
		log.WithError(err).Warn("failed to touch session")
	}

	res = &TurnResult{UserMessage: userMsg, AssistantMessage: reply, NextQuestion: resp.NextQuestion}

	if resp.ProfileDelta != nil && !resp.ProfileDelta.IsEmpty() {
		if _, err := s.profiles.SetFields(ctx, userID, resp.ProfileDelta.Values(), at); err != nil {
			log.WithError(err).Warn("failed to apply profile delta")
		} else {
			res.ProfileUpdated = true
		}
	}
	if !resp.PlanDelta.IsEmpty() {
		if _, err := s.plans.ApplyPlanDelta(ctx, userID, sessionID, resp.PlanDelta); err != nil {
			log.WithError(err).Warn("failed to apply plan delta")
		} else {
			res.PlanUpdated = true
		}
	}

	log.WithFields(logrus.Fields{
		"profile_updated": res.ProfileUpdated,
		"plan_updated":    res.PlanUpdated,
		"sources":         len(reply.Sources),
	}).Info("turn handled")

	return res, respondErr
}

// optional maps a not-found read to a nil record.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func turnOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch utils.CodeOf(err) {
	case utils.CodeUnavailable:
		return "apology"
	default:
		return "error"
	}
}
