// Package errors provides standardized error categories for the storage
// layer. The engine itself folds anomalous domain inputs into conservative
// values and never returns these; the repositories use them to keep
// failure handling consistent.
package errors

import (
	"errors"
	"fmt"
)

// Standard error categories.
var (
	// ErrNotFound indicates a stored document was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a document failed validation on save or load.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a conflict with existing data (e.g. duplicate id).
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an unexpected storage failure.
	ErrInternal = errors.New("internal error")
)

// NotFound wraps ErrNotFound with the document kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// Validation wraps ErrValidation with a cause.
func Validation(cause error) error {
	return fmt.Errorf("%w: %v", ErrValidation, cause)
}

// IsNotFound reports whether the error is a not-found category error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
