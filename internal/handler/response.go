package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes the standard envelope for a service error. AppError
// codes map to their HTTP status; anything else is an opaque 500.
func Error(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewInternal(err)
	}
	_ = c.Error(err)
	c.JSON(appErr.StatusCode(), &Response{
		Status:  "error",
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}
