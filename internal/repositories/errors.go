package repositories

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrTimeout indicates a store call exceeded the request deadline. Retryable.
	ErrTimeout = errors.New("store deadline exceeded")
)

// mapTimeout converts a deadline overrun into the retryable ErrTimeout so
// callers can distinguish it from definitive failures.
func mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
