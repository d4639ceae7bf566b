package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)

	ErrEmptyCart = errors.New("cart is empty")
	ErrForbidden = errors.New("access denied")

	// ErrInvalidCredentials is the only login failure shown to callers.
	// The wrapped kinds below stay distinguishable for logging.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownUser        = fmt.Errorf("%w: unknown username", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
)

// ValidationError reports an empty or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps any failure of the underlying data access layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
