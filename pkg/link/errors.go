package link

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates the operation didn't complete in time.
	ErrTimeout = errors.New("timeout")
	// ErrTooLarge indicates a transfer exceeds MaxTransfer.
	ErrTooLarge = errors.New("transfer too large")
	// ErrClosed indicates the link has been closed.
	ErrClosed = errors.New("link closed")
)

// Error wraps a failure of a link primitive.
type Error struct {
	Op  string
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure is a timeout.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}

// IsTimeout checks if err is caused by a link timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
