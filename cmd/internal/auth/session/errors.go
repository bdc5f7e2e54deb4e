package session

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable matches every *StoreError via errors.Is.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")

	errUndecodable = errors.New("session payload undecodable")
)

// StoreError wraps a failed backend call with the operation that issued it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// IsStoreError reports whether err came from a session backend.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
