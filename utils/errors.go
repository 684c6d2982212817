package utils

import "errors"

var (
	// ErrValidation marks malformed input rejected before any I/O.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing user, article, comment or blob.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a unique constraint violation on create.
	ErrConflict = errors.New("already exists")

	// ErrForbidden marks an operation attempted by someone other than the owner.
	ErrForbidden = errors.New("forbidden")

	// ErrStorage marks a failure of the relational or object store. Details are
	// logged, never returned to the client.
	ErrStorage = errors.New("storage failure")
)
