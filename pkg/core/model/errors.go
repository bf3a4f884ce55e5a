package model

import "errors"

// Sentinel errors returned by the core operations. Callers match with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrUnauthorized means the actor lacks permission for the operation.
	ErrUnauthorized = errors.New("actor is not authorized")

	// ErrInvalidWorkDate means the supplied work date text did not
	// normalize to a valid calendar date.
	ErrInvalidWorkDate = errors.New("invalid work date")

	// ErrDatasetNotFound means the referenced dataset does not exist
	// (possibly deleted concurrently).
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrFlightNotFound means the referenced flight does not exist.
	ErrFlightNotFound = errors.New("flight not found")

	// ErrIllegalTransition means an attempt to un-mark an operated flight.
	// This signals a client bug or tampering and is never retried.
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
)
