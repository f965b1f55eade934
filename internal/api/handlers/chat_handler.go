package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/studycounsel/internal/services"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if !bindJSON(c, &req, "ChatHandler.Ask", "message required") {
		return
	}

	out, err := h.svc.Ask(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
