package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrGuestNotFound       = errors.New("guest not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrGroupNotFound       = errors.New("reservation group not found")
)

// ValidationError reports malformed input. It is surfaced immediately to the
// caller and never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func NewValidationError(field, format string, v ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, v...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func IsValidationError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return validationError
	}

	return nil
}

// ConflictError reports a date overlap or a stale write. The conflicting state
// may still be valid business state, so it is surfaced for user choice and
// never auto-retried.
type ConflictError struct {
	Resource string
	Msg      string
}

func NewConflictError(resource, format string, v ...any) *ConflictError {
	return &ConflictError{Resource: resource, Msg: fmt.Sprintf(format, v...)}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Msg)
}

func IsConflictError(err error) *ConflictError {
	if err == nil {
		return nil
	}

	var conflictError *ConflictError
	if errors.As(err, &conflictError) {
		return conflictError
	}

	return nil
}

// StateError reports an illegal status transition.
type StateError struct {
	From ReservationStatus
	To   ReservationStatus
	Msg  string
}

func (e *StateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("illegal transition from %q to %q", e.From, e.To)
}

func IsStateError(err error) *StateError {
	if err == nil {
		return nil
	}

	var stateError *StateError
	if errors.As(err, &stateError) {
		return stateError
	}

	return nil
}

// PersistenceError wraps a storage failure during a write. Multi-step
// operations roll back any partial writes before surfacing it.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsPersistenceError(err error) *PersistenceError {
	if err == nil {
		return nil
	}

	var persistenceError *PersistenceError
	if errors.As(err, &persistenceError) {
		return persistenceError
	}

	return nil
}

// TimeoutError reports an operation that could not complete within its bound.
// It is surfaced to the caller rather than retried, since a retried create
// could double-book.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: operation timed out", e.Op)
}

func IsTimeoutError(err error) *TimeoutError {
	if err == nil {
		return nil
	}

	var timeoutError *TimeoutError
	if errors.As(err, &timeoutError) {
		return timeoutError
	}

	return nil
}
