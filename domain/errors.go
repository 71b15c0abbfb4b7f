package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFarmerNotFound distinguishes a missing record from a storage fault so
// the delivery layer can answer 404 instead of 500.
var ErrFarmerNotFound = errors.New("farmer not found")

// ValidationError carries the per-field messages collected by the schema
// validator. It always maps to a client error.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields []string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, "; "))
}

// UploadError marks a blob-store failure for a specific document slot.
type UploadError struct {
	Slot Slot
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Slot, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// StorageError marks a database fault (unavailable, constraint violation).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
