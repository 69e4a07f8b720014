package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindNotFound     Kind = "ENTITY_NOT_FOUND"
	KindPersistence  Kind = "DATABASE_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
)

// Error is the failure value returned by every write operation. Message is
// safe to show to the distributor; Detail and Err are for logs.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	e := &Error{Kind: kind, Message: msg, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func Validation(msg string, err error) *Error  { return newError(KindValidation, msg, err) }
func NotFound(msg string) *Error                { return newError(KindNotFound, msg, nil) }
func Persistence(msg string, err error) *Error { return newError(KindPersistence, msg, err) }
func Unauthorized(msg string) *Error            { return newError(KindUnauthorized, msg, nil) }

// KindOf reports the kind of err, or KindPersistence for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindPersistence
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "unexpected error"
}

// HTTPStatus maps an error kind onto a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
