// Package apperr defines the error kinds shared by the domain packages and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Domain code wraps one of these so callers can use errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrDuplicateReview = errors.New("duplicate review")
	ErrUnavailable     = errors.New("store unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func InvalidInput(message string) *Error {
	return &Error{Code: "INVALID_INPUT", Message: message, Kind: ErrInvalidInput}
}

func NotFound(resource, id string) *Error {
	return &Error{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", resource, id), Kind: ErrNotFound}
}

func Forbidden(message string) *Error {
	return &Error{Code: "FORBIDDEN", Message: message, Kind: ErrForbidden}
}

func DuplicateReview(userID, bookID string) *Error {
	return &Error{
		Code:    "DUPLICATE_REVIEW",
		Message: fmt.Sprintf("user %s has already reviewed book %s", userID, bookID),
		Kind:    ErrDuplicateReview,
	}
}

func Conflict(message string) *Error {
	return &Error{Code: "CONFLICT", Message: message, Kind: ErrConflict}
}

func Unauthorized(message string) *Error {
	return &Error{Code: "UNAUTHORIZED", Message: message, Kind: ErrUnauthorized}
}

// Unavailable wraps a store failure. The cause is kept for server-side logs.
func Unavailable(cause error) *Error {
	return &Error{Code: "UNAVAILABLE", Message: "storage is unavailable", Kind: ErrUnavailable, Cause: cause}
}

// HTTPStatus returns the status code a transport should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateReview), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code for err, INTERNAL_ERROR when err
// carries no kind.
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	}
	return "INTERNAL_ERROR"
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
