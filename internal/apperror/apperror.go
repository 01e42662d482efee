package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrState        = errors.New("invalid state")
	ErrDeadline     = errors.New("deadline")
	ErrDuplicate    = errors.New("duplicate")
)

// AppError carries a client-facing message on top of one of the sentinel kinds.
type AppError struct {
	Err     error  // kind
	Message string // human-readable, safe to return to clients
	Field   string // optional input field at fault
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

// Forbidden returns an AppError indicating the caller lacks rights on the resource.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func InvalidState(message string) *AppError {
	return &AppError{Err: ErrState, Message: message}
}

// DeadlineExceeded reports an operation attempted outside its allowed time window.
func DeadlineExceeded(message string) *AppError {
	return &AppError{Err: ErrDeadline, Message: message}
}

func Duplicate(message string) *AppError {
	return &AppError{Err: ErrDuplicate, Message: message}
}

// Internal wraps an unclassified failure with operation context.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// HTTPStatus maps an error to its HTTP status. Unclassified errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrState),
		errors.Is(err, ErrDeadline),
		errors.Is(err, ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err, or fallback when err is unclassified.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
