package ledger

import (
	"errors"
	"fmt"
)

// Failure classes returned by the engine and the query facade. Callers match them with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrStorage             = errors.New("storage failure")
	ErrSameAccount         = fmt.Errorf("%w: receiver and depositer are the same account", ErrValidation)
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names what could not be resolved, e.g. Role "receiver account" and Key the cpf.
type NotFoundError struct {
	Role string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Role, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(role, key string) error {
	return &NotFoundError{Role: role, Key: key}
}
