package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-checkable error code.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"

	// Scheduling conflicts map to 409 so callers can refresh slots and
	// re-submit. Consent maps to 403 and requires the intake flow instead.
	CodeSlotNoLongerAvailable  Code = "SLOT_NO_LONGER_AVAILABLE"
	CodeOutsideWorkingHours    Code = "OUTSIDE_WORKING_HOURS"
	CodeInactiveServiceOrStaff Code = "INACTIVE_SERVICE_OR_STAFF"
	CodeConsentRequired        Code = "CONSENT_REQUIRED"
)

// AppError represents an application error with a stable code.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status. The error
// middleware relies on this.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConsentRequired:
		return http.StatusForbidden
	case CodeSlotNoLongerAvailable, CodeOutsideWorkingHours, CodeInactiveServiceOrStaff:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidation(message string, err error) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Err: err}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func NewUnauthorized(err error) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: "unauthorized", Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// NewConflict builds a scheduling conflict error from one of the
// conflict codes.
func NewConflict(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
