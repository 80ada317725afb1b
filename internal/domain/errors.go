package domain

import "errors"

var (
	// ErrValidation is returned when input is malformed or misses required fields.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when a request carries no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the actor lacks rights over an existing entity.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced entity (or a link of its ownership chain) is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness invariant would be violated.
	ErrConflict = errors.New("conflict")
	// ErrPrecondition is returned when an operation needs a prerequisite resource that does not exist yet.
	ErrPrecondition = errors.New("precondition failed")
)
