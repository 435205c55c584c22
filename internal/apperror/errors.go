// Package apperror provides typed errors that carry an HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Type is the category of an error.
type Type string

const (
	TypeValidation   Type = "validation"
	TypeUnauthorized Type = "unauthorized"
	TypeForbidden    Type = "forbidden"
	TypeNotFound     Type = "not_found"
	TypeConflict     Type = "conflict"
	TypeTooLarge     Type = "too_large"
	TypeRateLimited  Type = "rate_limited"
	TypeInternal     Type = "internal"
	TypeExternal     Type = "external"
)

// Error is a structured error with type, client-facing message and cause.
type Error struct {
	Type    Type
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for the error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithContext adds a context field to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

func Validation(message string) *Error   { return newError(TypeValidation, message, nil) }
func Unauthorized(message string) *Error { return newError(TypeUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return newError(TypeForbidden, message, nil) }
func NotFound(message string) *Error     { return newError(TypeNotFound, message, nil) }
func Conflict(message string) *Error     { return newError(TypeConflict, message, nil) }
func TooLarge(message string) *Error     { return newError(TypeTooLarge, message, nil) }

// New builds an error of any type without a cause.
func New(t Type, message string) *Error { return newError(t, message, nil) }

func Internal(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func External(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an *Error of type t.
func IsType(err error, t Type) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}
