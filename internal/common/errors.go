// Package common defines shared constants and the error taxonomy used across
// vidkeeper layers. Callers should use errors.Is to match the kind sentinels.
package common

import (
	"errors"
	"fmt"
)

var (
	// Error kinds. Every failure surfaced by a service matches exactly one.
	ErrorBadRequest   = errors.New("bad request")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorNotFound     = errors.New("not found")
	ErrorInternal     = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// Error is a service-level failure: a kind sentinel, a human-readable message
// and, optionally, the collaborator error that caused it.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewError returns an *Error of the given kind.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError returns an *Error of the given kind that keeps err as its cause.
func WrapError(kind error, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Message returns the human-readable part of err. For errors that are not
// *Error the full error string is returned.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// KindOf reports the taxonomy kind of err. The outermost *Error wins;
// bare sentinels are recognised too and anything else is internal.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	for _, kind := range []error{ErrorBadRequest, ErrorUnauthorized, ErrorConflict, ErrorNotFound} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrorInternal
}
