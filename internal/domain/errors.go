package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence indicates the key-value store could not be read or written.
	ErrPersistence = errors.New("persistence failure")
	// ErrRemoteRejection indicates the remote cart service failed the request or
	// returned a payload that could not be decoded.
	ErrRemoteRejection = errors.New("remote rejection")
	// ErrNotFound indicates the referenced cart line does not exist.
	ErrNotFound = errors.New("not found")
	// ErrKeyNotFound is returned by key-value stores for absent keys.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidArgument indicates a malformed operation input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OpError is the failure of a single cart operation.
type OpError struct {
	Op        OpKind
	ProductID string
	Err       error
}

func (e *OpError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("failed to %s (product %s): %v", e.Op.Action(), e.ProductID, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op.Action(), e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
