// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDocumentNotFound indicates a workflow document was not found by name.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentInvalidName indicates a document name unusable as a storage key.
	ErrDocumentInvalidName = errors.New("invalid document name")
)

// DocumentError wraps document storage errors with operation context.
type DocumentError struct {
	Op       string // Operation being performed (e.g. "Save", "Delete")
	Document string // Document name if applicable
	Err      error  // Underlying error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s operation failed for document %s: %v", e.Op, e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NewDocumentError creates a wrapped document storage error.
func NewDocumentError(op, document string, err error) *DocumentError {
	return &DocumentError{Op: op, Document: document, Err: err}
}

// IsDocumentNotFound checks if an error indicates a missing document.
func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}
