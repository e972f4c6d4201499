package store

import (
	"errors"
	"fmt"
)

// Errors returned by Store operations.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, store.ErrNotFound) {
//	    // Handle a missing task id
//	}
//
// Input rejected before any write is reported as *schema.ValidationError and
// storage engine failures as *PersistenceError; use errors.As for both.
var (
	// ErrNotInitialized is returned when an operation needs the database
	// handle but Initialize has not completed successfully.
	ErrNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when an update or deletion toggle targets an
	// id with no matching row.
	ErrNotFound = errors.New("task not found")

	// ErrClosed is returned by Initialize when Close ran while the database
	// was being opened. The handle from that attempt is closed again.
	ErrClosed = errors.New("store closed during initialization")
)

// PersistenceError wraps a storage engine failure. The cause's message is
// kept in Error() so it reaches the user.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
