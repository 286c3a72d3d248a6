// Package persistence defines the sentinel errors shared by every storage
// implementation. Repository interfaces live next to the services that
// consume them; the stores under postgres/ and memory/ implement them and
// report failures through these sentinels.
package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint (email, CPF) is violated.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned for other integrity violations.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrInvalidState is returned when a guarded transition finds the record
	// in a status that does not permit it.
	ErrInvalidState = errors.New("persistence: invalid state")
)
