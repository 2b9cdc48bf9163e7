package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no mapping exists for a slug.
	ErrNotFound = stderrors.New("mapping not found")

	// ErrSlugConflict is returned when an insert collides with an existing slug.
	ErrSlugConflict = stderrors.New("slug already exists")
)

// PersistenceError wraps any fault raised by the storage layer.
// Op names the storage operation that failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err as a PersistenceError for op. A nil err stays nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err (or anything it wraps) is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return stderrors.As(err, &pe)
}

// ValidationError is returned when a request carries malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrSlugGenerationFailed is returned when every generated slug collided.
type ErrSlugGenerationFailed struct {
	Attempts int
}

func (e *ErrSlugGenerationFailed) Error() string {
	return fmt.Sprintf("could not generate a unique slug after %d attempts", e.Attempts)
}
