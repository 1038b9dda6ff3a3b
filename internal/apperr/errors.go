// Package apperr defines the error taxonomy surfaced to API clients.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError is an error that knows how it should be presented over HTTP.
type AppError interface {
	error
	HTTPCode() int
	Code() string
	Message() string
}

// Error is the concrete AppError used throughout the services.
type Error struct {
	status  int
	code    string
	message string
}

func (e *Error) Error() string   { return e.message }
func (e *Error) HTTPCode() int   { return e.status }
func (e *Error) Code() string    { return e.code }
func (e *Error) Message() string { return e.message }

// New creates an Error with an explicit status and code.
func New(status int, code, message string) *Error {
	return &Error{status: status, code: code, message: message}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, "UNAUTHENTICATED", message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, "CONFLICT", message)
}

// Internal wraps an unexpected failure. The wrapped cause is kept for logging
// and never shown to clients.
func Internal(err error, context string) error {
	return errors.Wrap(err, context)
}

// As extracts the AppError carried by err, if any.
func As(err error) (AppError, bool) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status associated with err, 500 when unknown.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPCode()
	}
	return http.StatusInternalServerError
}
