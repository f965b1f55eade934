package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/studycounsel/internal/utils"
)

// UserIDHeader carries the caller identity set by the fronting gateway.
const UserIDHeader = "X-User-Id"

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// Identity trusts the gateway-provided user id and rejects requests without one.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "user not authenticated",
			})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
