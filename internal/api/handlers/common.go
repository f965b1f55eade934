package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/studycounsel/internal/utils"
)

type APIError struct {
	Code      utils.Code `json:"code"`
	Message   string     `json:"message"`
	RequestID string     `json:"request_id,omitempty"`
}

// writeError renders err and attaches it to the context so RequestLogger records it.
// Only AppError messages reach the client; anything else is reported by status text.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := utils.HTTPStatus(err)

	body := APIError{
		Code:      utils.CodeOf(err),
		Message:   http.StatusText(status),
		RequestID: c.GetString("request_id"),
	}
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		body.Message = ae.Message
	}
	c.JSON(status, body)
}

func requireUserID(c *gin.Context) (string, bool) {
	if s := c.GetString("user_id"); s != "" {
		return s, true
	}
	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "user not authenticated", nil))
	return "", false
}

// bindJSON binds a required body, writing a 400 with msg on failure.
func bindJSON(c *gin.Context, dst any, op, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, msg, err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
