// Package apperr carries the error taxonomy from spec component H/§7
// through the orchestrator to the HTTP layer, so a handler can map any
// error to the right status code without re-deriving its meaning.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one of the six error kinds the core distinguishes.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "auth"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// Error wraps an underlying cause with the kind that decides its HTTP
// status and whether its message is safe to show a client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation-kind error with a client-safe message.
func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// Conflict builds a conflict-kind error.
func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

// NotFound builds a not-found-kind error.
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// Auth builds an auth-kind error. Message should never disclose
// whether a label exists.
func Auth(format string, args ...any) *Error { return newf(KindAuth, format, args...) }

// Upstream wraps cause as an upstream-kind error; cause is logged, not
// shown to the client.
func Upstream(cause error, context string) *Error {
	return &Error{Kind: KindUpstream, Message: context, Cause: cause}
}

// Internal wraps cause as an internal-kind error; cause is logged, not
// shown to the client.
func Internal(cause error, context string) *Error {
	return &Error{Kind: KindInternal, Message: context, Cause: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error,
// defaulting to KindInternal for anything else so an unclassified
// error never accidentally becomes a 200.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
