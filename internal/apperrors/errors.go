package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrState indicates that an operation is not valid for the current state of an aggregate.
var ErrState = errors.New("invalid state")

// ErrIntegrity indicates corrupted or unreadable event history. It must never be swallowed.
var ErrIntegrity = errors.New("integrity violation")

// ErrConcurrency indicates an optimistic concurrency conflict. Callers may reload and retry.
var ErrConcurrency = errors.New("concurrency conflict")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
// It is used by infrastructure adapters where the failure has no domain meaning.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause so errors.Is keeps working through an AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets an AppError without a domain cause match ErrInternal.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= 500
}
