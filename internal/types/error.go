package types

import "fmt"

// ValidationError rejects caller input before any write happens.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a required field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError signals that a referenced id does not exist.
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       uint64 `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFoundError builds a NotFoundError for a resource and id.
func NewNotFoundError(resource string, id uint64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PersistenceError wraps an underlying store failure for diagnostics.
// The original cause stays reachable through errors.Is/As chains.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err with the failing operation name.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
