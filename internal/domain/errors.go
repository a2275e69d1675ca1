package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer either unwraps to
// one of these or is treated as a persistence failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not authorized")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
)

// Error is a user-facing rejection. Message is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// NotFound builds "<what> not found".
func NotFound(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

// IsRejection reports whether err is one of the known error kinds, as
// opposed to an unexpected storage failure.
func IsRejection(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
