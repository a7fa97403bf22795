// Package apperr defines the domain-level error taxonomy shared by services
// and handlers. Services return these sentinels wrapped with context via
// fmt.Errorf("%w: ..."); handlers classify with errors.Is and translate to
// HTTP status codes in one place.
package apperr

import "errors"

var (
	// ErrNotFound means a referenced user, relationship or content row does
	// not exist (or is soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor lacks authority for the requested
	// transition, or lacks visibility into the content.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means a relationship already exists for the pair in a
	// status incompatible with the requested operation.
	ErrConflict = errors.New("conflict")

	// ErrInvalidOperation means the request is self-referential
	// (friend request, follow or block targeting the actor themselves).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidState means a transition was attempted from a status that
	// does not permit it, e.g. accepting a non-pending relationship.
	ErrInvalidState = errors.New("invalid state")
)
