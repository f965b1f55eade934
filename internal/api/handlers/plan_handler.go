package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/services"
	"github.com/yoockh/studycounsel/internal/utils"
)

type PlanHandler struct {
	svc services.PlanService
}

func NewPlanHandler(svc services.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// Get returns the session's plan, or the latest one without ?session_id. A
// missing plan is {"plan": null}.
func (h *PlanHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plan, err := h.svc.GetPlan(c.Request.Context(), userID, c.Query("session_id"))
	if err != nil {
		if utils.CodeOf(err) == utils.CodeNotFound {
			c.JSON(http.StatusOK, gin.H{"plan": nil})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

type UpdatePlanRequest struct {
	SessionID string          `json:"session_id" binding:"required"`
	Action    string          `json:"action" binding:"required"` // add|update|remove
	Step      models.PlanStep `json:"step"`
}

func (h *PlanHandler) Update(c *gin.Context) {
	const op = "PlanHandler.Update"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdatePlanRequest
	if !bindJSON(c, &req, op, "session_id and action are required") {
		return
	}

	ctx := c.Request.Context()
	matched := true
	var err error
	switch req.Action {
	case "add":
		_, err = h.svc.AddStep(ctx, userID, req.SessionID, req.Step)
	case "update":
		matched, err = h.svc.UpdateStep(ctx, userID, req.SessionID, req.Step)
	case "remove":
		matched, err = h.svc.RemoveStep(ctx, userID, req.SessionID, req.Step.StepID)
	default:
		err = utils.E(utils.CodeInvalidArgument, op, "invalid action: "+req.Action, nil)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	plan, err := h.svc.GetPlan(ctx, userID, req.SessionID)
	if err != nil && utils.CodeOf(err) != utils.CodeNotFound {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan updated successfully", "matched": matched, "plan": plan})
}
