package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error taxonomy shared by the ledger, evaluator and aggregator:
//   - PersistenceError: the underlying store read/write failed. Retryable.
//   - NotFoundError: a referenced row is missing. Not retryable; the caller
//     must re-validate its input.
//   - ValidationError: malformed input (bad reward type, broken requirements).
//     Not retryable.

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// wrapDBErr maps a gorm error to the taxonomy. ErrRecordNotFound becomes a
// NotFoundError, everything else a retryable PersistenceError.
func wrapDBErr(op, entity, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, Key: key}
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsRetryable reports whether the caller may retry the failed call as-is.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
