package inventory

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an item ID does not exist.
var ErrNotFound = errors.New("item not found")

// ValidationError reports caller input that was rejected before any side
// effect took place.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// StorageError wraps a persistence failure. Its message is safe to log but
// should not be shown to API clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// classify passes caller-facing errors through and wraps everything else
// as a StorageError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.Is(err, ErrNotFound) || errors.As(err, &ve) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
