package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/studycounsel/internal/services"
	"github.com/yoockh/studycounsel/internal/utils"
)

type CounselorHandler struct {
	sessions services.SessionService
	turns    services.TurnService
}

func NewCounselorHandler(sessions services.SessionService, turns services.TurnService) *CounselorHandler {
	return &CounselorHandler{sessions: sessions, turns: turns}
}

type CreateSessionRequest struct {
	Title   string `json:"title"`
	Purpose string `json:"purpose"` // initial_planning|programme_shortlist|visa_prep|general
}

func (h *CounselorHandler) CreateSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CounselorHandler.CreateSession", "invalid request body", err))
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), userID, req.Title, req.Purpose)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Session created successfully", "session": sess})
}

func (h *CounselorHandler) ListSessions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	list, err := h.sessions.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

func (h *CounselorHandler) GetSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *CounselorHandler) ListMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	msgs, err := h.sessions.Messages(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage runs one counseling turn. A failed completion still answers 200
// with the persisted apology, flagged as degraded.
func (h *CounselorHandler) SendMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !bindJSON(c, &req, "CounselorHandler.SendMessage", "message required") {
		return
	}

	res, err := h.turns.HandleTurn(c.Request.Context(), userID, c.Param("session_id"), req.Message)
	degraded := false
	if err != nil {
		if res == nil || utils.CodeOf(err) != utils.CodeUnavailable {
			writeError(c, err)
			return
		}
		_ = c.Error(err)
		degraded = true
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Message sent and response generated",
		"user_message":      res.UserMessage,
		"assistant_message": res.AssistantMessage,
		"profile_updated":   res.ProfileUpdated,
		"plan_updated":      res.PlanUpdated,
		"degraded":          degraded,
	})
}
