// Package apperrors defines the error taxonomy shared by the realtime core.
// Callers match with errors.Is; the HTTP layer maps each sentinel to a status
// code in one place.
package apperrors

import "errors"

var (
	// ErrValidation — malformed input (empty text, self-targeted request).
	// Rejected synchronously, no side effects.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden — the actor is not allowed: not friends, not a group
	// member, or wrong party for a friendship transition.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict — a duplicate friendship row or a lost compare-and-swap
	// race. The caller must re-fetch state, not retry blindly.
	ErrConflict = errors.New("conflict")

	// ErrNotFound — the target row does not exist or is not visible to the
	// actor.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable — the persistence store is unreachable. Cache outages
	// are never surfaced through this; they are absorbed and logged.
	ErrUnavailable = errors.New("storage unavailable")
)
