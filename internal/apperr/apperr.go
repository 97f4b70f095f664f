// Package apperr is the application error taxonomy. Every error a service
// returns across a module boundary is one of four kinds, and the HTTP layer
// maps kinds to status codes without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers.
type Kind int

const (
	// Validation is a bad input shape or range. The caller's fault; no retry.
	Validation Kind = iota + 1
	// NotFound is an unknown product, order, or cart line.
	NotFound
	// Conflict is a state clash: insufficient stock, underpayment, lockout.
	Conflict
	// Dependency is a remote store failure or malformed remote response.
	Dependency
)

// HTTPStatus maps a kind to the status code the handlers respond with.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Dependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Dependency:
		return "dependency"
	}
	return "internal"
}

// Error carries a kind, a client-safe message, and an optional wrapped cause.
// The cause never reaches clients; it exists for logs and errors.Is chains.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf builds a Validation error.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Dependencyf wraps a remote store failure with a client-safe message.
func Dependencyf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: Dependency, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, or 0 for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Status returns the HTTP status for any error, 500 for unclassified ones.
func Status(err error) int {
	if k := KindOf(err); k != 0 {
		return k.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ClientMessage returns the message safe to show a caller. Unclassified
// errors collapse to a generic message so internals never leak.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
