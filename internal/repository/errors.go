package repository

import "errors"

// Sentinel errors shared by the repositories. Handlers switch on these to
// pick status codes; the boundary error handler covers everything else.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrEmailExists is returned when the unique email index rejects a signup.
	ErrEmailExists = errors.New("email already exists")
)
