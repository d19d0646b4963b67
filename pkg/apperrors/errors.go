package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnconfigured        = errors.New("no active inspection configuration")
	ErrDetectorUnavailable = errors.New("detector unavailable")
	ErrStorage             = errors.New("storage failure")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// Validation wraps ErrValidation with a reason.
func Validation(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

// InvalidInput wraps ErrInvalidInput with a reason.
func InvalidInput(format string, args ...interface{}) error {
	return wrap(ErrInvalidInput, format, args...)
}

// NotFound wraps ErrNotFound with a reason.
func NotFound(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(format string, args ...interface{}) error {
	return wrap(ErrConflict, format, args...)
}

// Unconfigured wraps ErrUnconfigured with a reason.
func Unconfigured(format string, args ...interface{}) error {
	return wrap(ErrUnconfigured, format, args...)
}

// DetectorUnavailable wraps ErrDetectorUnavailable with a reason.
func DetectorUnavailable(format string, args ...interface{}) error {
	return wrap(ErrDetectorUnavailable, format, args...)
}

// Storage wraps a persistence error so callers can match ErrStorage while
// the driver error stays in the chain.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Reason strips the sentinel prefix from a wrapped error message.
func Reason(err error) string {
	var r *reasoned
	if errors.As(err, &r) {
		return r.reason
	}
	return err.Error()
}

type reasoned struct {
	kind   error
	reason string
}

func (e *reasoned) Error() string { return e.kind.Error() + ": " + e.reason }
func (e *reasoned) Unwrap() error { return e.kind }

func wrap(kind error, format string, args ...interface{}) error {
	return &reasoned{kind: kind, reason: fmt.Sprintf(format, args...)}
}
