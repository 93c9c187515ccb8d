// Package apperr defines the error kinds every marketplace operation reports.
//
// Application services wrap domain and adapter failures into exactly one kind
// so transport adapters can translate them without knowing the domain.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden reports that the principal lacks rights over the entity.
	ErrForbidden = errors.New("not authorized")
	// ErrConflict reports a violated state precondition.
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated reports missing or invalid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
)

var kinds = []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrUnauthenticated}

// Wrap tags err with kind unless it already carries that kind.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound builds a not-found error naming the missing resource.
func NotFound(resource string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, resource, id)
}

// Forbidden builds an authorization error.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Conflict builds a state-conflict error.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// KindOf returns the first kind err carries, or nil for unclassified errors.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
