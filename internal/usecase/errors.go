package usecase

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure the relay can surface. Each upstream
// failure is mapped to exactly one kind before it leaves this package.
type ErrorKind string

const (
	ErrorInvalidInput ErrorKind = "INVALID_INPUT"
	ErrorTransient    ErrorKind = "TRANSIENT"
	ErrorAuth         ErrorKind = "AUTH"
	ErrorMalformed    ErrorKind = "MALFORMED"
	ErrorNetwork      ErrorKind = "NETWORK"
	ErrorUpstream     ErrorKind = "UPSTREAM_ERROR"
)

// Error is the normalized relay failure. Status is the upstream HTTP status
// (or numeric error code) when one was reported, zero otherwise.
type Error struct {
	Kind   ErrorKind
	Reason string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Kind, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatus is the status the relay responds with: the upstream status when
// present, 400 for rejected input, 500 otherwise.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	if e.Status >= 100 && e.Status <= 599 {
		return e.Status
	}
	if e.Kind == ErrorInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func newError(kind ErrorKind, reason string, err error) *Error {
	e := &Error{Kind: kind, Reason: reason, Err: err}
	if err != nil {
		e.Detail = err.Error()
	} else {
		e.Detail = reason
	}
	return e
}
