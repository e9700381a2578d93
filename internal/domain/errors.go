package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced comment does not exist.
	ErrNotFound = errors.New("comment not found")

	// ErrStoreUnavailable indicates the comment table could not be reached
	// or returned an unexpected error. Callers may retry with backoff; the
	// service itself never retries.
	ErrStoreUnavailable = errors.New("comment store unavailable")
)

// InvalidInputError reports caller-supplied data that fails a validation
// rule. It is always a client error and never retried.
type InvalidInputError struct {
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Field)
}

// NewInvalidInput returns an InvalidInputError for the given field.
func NewInvalidInput(field string) error {
	return &InvalidInputError{Field: field}
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var iie *InvalidInputError
	return errors.As(err, &iie)
}
