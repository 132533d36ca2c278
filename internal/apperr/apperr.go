// Package apperr is the error taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"time"

	"github.com/pkg/errors"
)

type Kind uint8

const (
	KindInvalidArgument Kind = iota + 1
	KindNotFound
	KindRateLimited
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// ResetTime is set for KindRateLimited only.
	ResetTime time.Time
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Cause lets errors.Cause walk through to the wrapped persistence error.
func (e *Error) Cause() error { return e.cause }

func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func RateLimited(reset time.Time) error {
	return &Error{Kind: KindRateLimited, Message: "Too many requests, please try again later", ResetTime: reset}
}

// Persistence wraps a storage failure. The message shown to clients never
// includes the cause.
func Persistence(err error, msg string) error {
	return &Error{Kind: KindPersistence, Message: msg, cause: errors.WithStack(err)}
}

// From returns the *Error in err's chain, if any.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	e, ok := From(err)
	return ok && e.Kind == kind
}

// RetryAfter is the whole number of seconds until reset, rounded up, never below one.
func RetryAfter(reset, now time.Time) int {
	d := reset.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
