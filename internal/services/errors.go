// Package services defines the business logic of the card feed: eligibility,
// category resolution, variant classification, feed assembly and the daily
// feed cache. This file centralizes the service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into HTTP status codes is performed at the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Caller errors.
var (
	// ErrUnauthorized is returned when an operation requires an identified
	// caller and none is present.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden is returned when the caller is identified but lacks the
	// privilege the operation needs (e.g. admin cache invalidation).
	ErrForbidden = errors.New("admin privileges required")

	// ErrInvalidInput is returned for malformed parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// Lookup errors.
var (
	// ErrCategoryNotFound indicates an unknown or inactive category slug.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrGameNotFound indicates that the card is missing, is not a game, is
	// not visible to the caller, or has no game metadata.
	ErrGameNotFound = errors.New("game not found")

	// ErrMoodNotFound indicates an unknown or inactive mood.
	ErrMoodNotFound = errors.New("mood not found")
)

// ErrTransient marks store and cache failures the caller may retry, such as
// timeouts or a lost connection. Match it with errors.Is; the concrete error
// is a *TransientError carrying the cause.
var ErrTransient = errors.New("temporarily unavailable")

// TransientError wraps a store or cache failure.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrTransient, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransientError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransient) true for every *TransientError.
func (e *TransientError) Is(target error) bool { return target == ErrTransient }

// transient wraps err as a *TransientError unless it is nil or already one.
func transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransientError
	if errors.As(err, &te) {
		return err
	}
	return &TransientError{Op: op, Err: err}
}
