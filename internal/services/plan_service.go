package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/studycounsel/internal/models"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
	"github.com/yoockh/studycounsel/internal/utils"
)

type PlanService interface {
	// ApplyPlanDelta appends the delta's steps, creating the plan on first use.
	// It returns nil and no error when the delta has no steps.
	ApplyPlanDelta(ctx context.Context, userID, sessionID string, delta *models.PlanDelta) (*models.Plan, error)
	AddStep(ctx context.Context, userID, sessionID string, step models.PlanStep) (*models.PlanStep, error)
	// UpdateStep and RemoveStep report whether a step with that id existed in
	// the (user, session) plan. A miss is not an error.
	UpdateStep(ctx context.Context, userID, sessionID string, step models.PlanStep) (bool, error)
	RemoveStep(ctx context.Context, userID, sessionID, stepID string) (bool, error)
	// GetPlan returns the session's plan, or the user's latest plan when sessionID is empty.
	GetPlan(ctx context.Context, userID, sessionID string) (*models.Plan, error)
}

type planService struct {
	plans         mongorepo.PlanRepository
	countryTarget string
	now           func() time.Time
}

func NewPlanService(plans mongorepo.PlanRepository, countryTarget string, now func() time.Time) PlanService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &planService{plans: plans, countryTarget: countryTarget, now: now}
}

func (s *planService) ApplyPlanDelta(ctx context.Context, userID, sessionID string, delta *models.PlanDelta) (*models.Plan, error) {
	const op = "PlanService.ApplyPlanDelta"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if delta.IsEmpty() {
		return nil, nil
	}

	at := s.now()
	plan, err := s.plans.Ensure(ctx, userID, sessionID, s.countryTarget, at)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load plan", err)
	}

	used := make(map[string]bool, len(plan.Steps)+len(delta.NewSteps))
	for _, st := range plan.Steps {
		used[st.StepID] = true
	}
	steps := make([]models.PlanStep, 0, len(delta.NewSteps))
	for _, st := range delta.NewSteps {
		steps = append(steps, normalizeStep(st, used))
	}

	if err := s.plans.PushSteps(ctx, userID, sessionID, steps, at); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to append steps", err)
	}
	plan.Steps = append(plan.Steps, steps...)
	plan.LastUpdatedAt = at
	return plan, nil
}

// normalizeStep fills a unique id and the default status.
func normalizeStep(st models.PlanStep, used map[string]bool) models.PlanStep {
	st.Title = strings.TrimSpace(st.Title)
	if st.StepID == "" || used[st.StepID] {
		st.StepID = uuid.NewString()
	}
	used[st.StepID] = true
	if st.Status == "" {
		st.Status = models.StepStatusPending
	}
	return st
}

func (s *planService) AddStep(ctx context.Context, userID, sessionID string, step models.PlanStep) (*models.PlanStep, error) {
	const op = "PlanService.AddStep"

	if strings.TrimSpace(step.Title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	plan, err := s.ApplyPlanDelta(ctx, userID, sessionID, &models.PlanDelta{NewSteps: []models.PlanStep{step}})
	if err != nil {
		return nil, err
	}
	added := plan.Steps[len(plan.Steps)-1]
	return &added, nil
}

func (s *planService) UpdateStep(ctx context.Context, userID, sessionID string, step models.PlanStep) (bool, error) {
	const op = "PlanService.UpdateStep"

	if userID == "" || sessionID == "" || step.StepID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id, session_id and step_id are required", nil)
	}
	if step.Status == "" {
		step.Status = models.StepStatusPending
	}

	at := s.now()
	matched, err := s.plans.ReplaceStep(ctx, userID, sessionID, step, at)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to update step", err)
	}
	if !matched {
		if err := s.plans.Touch(ctx, userID, sessionID, at); err != nil {
			return false, utils.E(utils.CodeInternal, op, "failed to touch plan", err)
		}
	}
	return matched, nil
}

func (s *planService) RemoveStep(ctx context.Context, userID, sessionID, stepID string) (bool, error) {
	const op = "PlanService.RemoveStep"

	if userID == "" || sessionID == "" || stepID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id, session_id and step_id are required", nil)
	}

	at := s.now()
	matched, err := s.plans.PullStep(ctx, userID, sessionID, stepID, at)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to remove step", err)
	}
	if !matched {
		if err := s.plans.Touch(ctx, userID, sessionID, at); err != nil {
			return false, utils.E(utils.CodeInternal, op, "failed to touch plan", err)
		}
	}
	return matched, nil
}

func (s *planService) GetPlan(ctx context.Context, userID, sessionID string) (*models.Plan, error) {
	const op = "PlanService.GetPlan"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	var (
		plan *models.Plan
		err  error
	)
	if sessionID == "" {
		plan, err = s.plans.Latest(ctx, userID)
	} else {
		plan, err = s.plans.Get(ctx, userID, sessionID)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "plan not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get plan", err)
	}
	return plan, nil
}
