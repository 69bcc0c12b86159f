package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when there are no observations to anchor a query on.
	ErrEmptyDataset = errors.New("observation dataset is empty")

	ErrInvalidRange = errors.New("end date is before start date")
)

// StorageError wraps any failure reported by the storage backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage returns nil for a nil err.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
