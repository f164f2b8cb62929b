// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrInternalError = errors.New("internal error")
)

// AppError is a rejected operation with a stable, caller-visible reason.
// Err is the kind (one of the sentinels above) so errors.Is keeps working.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
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

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

// Reject builds an AppError whose status is derived from its kind, so
// services can return outcomes without knowing about the transport.
func Reject(kind error, code, message string) *AppError {
	return NewAppError(kind, message, statusForKind(kind), code)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func statusForKind(kind error) int {
	switch {
	case errors.Is(kind, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(kind, ErrInvalidInput), errors.Is(kind, ErrTokenInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "BAD_REQUEST")
}
