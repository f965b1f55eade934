package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/services"
	"github.com/yoockh/studycounsel/internal/utils"
)

type ProfileHandler struct {
	svc services.ProfileService
}

func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.GetMe(c.Request.Context(), userID)
	if err != nil {
		if utils.CodeOf(err) == utils.CodeNotFound {
			c.JSON(http.StatusOK, gin.H{"profile": nil})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// Update applies a partial profile. Omitted and blank fields keep their stored value.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.ProfileDelta
	if !bindJSON(c, &req, "ProfileHandler.Update", "invalid request body") {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": p})
}
