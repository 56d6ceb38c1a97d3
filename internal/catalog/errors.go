package catalog

import (
	"errors"
	"fmt"
)

var ErrInvalidFilter = errors.New("invalid filter")

// StorageError wraps a database failure with the operation that hit it.
// Store methods log it and return a zero result instead of propagating.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
