package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

// ErrorResponse is the error envelope returned to clients. Code is the
// stable machine-checkable error code, not the HTTP status.
type ErrorResponse struct {
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler logs errors attached to the gin context and acts as a
// backstop for handlers that recorded an error without writing a
// response. Anything that is not an AppError becomes an opaque 500.
func ErrorHandler(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		lastErr := c.Errors.Last().Err

		appErr, ok := apperrors.AsAppError(lastErr)
		if !ok {
			appErr = apperrors.NewInternal(lastErr)
		}
		status := appErr.StatusCode()

		if status >= http.StatusInternalServerError {
			log.Error().
				Err(lastErr).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request failed")
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, ErrorResponse{
			Status:    "error",
			Code:      string(appErr.Code),
			Message:   appErr.Message,
			RequestID: requestID,
		})
	}
}
