// Package link provides blocking byte transports used to move image frames.
//
// A Link is the serial line seen by the transfer protocol: no framing, no
// flow control, and no single transfer larger than MaxTransfer bytes.
package link

import (
	"io"
	"time"
)

// MaxTransfer is the largest number of bytes a single Read or Write may move.
// It is bounded by the 16-bit length argument of the UART primitive.
const MaxTransfer = 65535

// Link is a blocking, full-duplex byte transport.
//
// Write transmits all of p or fails. Read fills all of p or fails. Both fail
// with ErrTimeout when the operation doesn't complete within timeout, and with
// ErrTooLarge when len(p) exceeds MaxTransfer. A timeout <= 0 blocks without
// limit.
//
// A Link is owned by one in-flight transfer at a time; implementations don't
// serialize concurrent callers.
type Link interface {
	Write(p []byte, timeout time.Duration) error
	Read(p []byte, timeout time.Duration) error
}

// Conn is a Link which must be closed after use.
type Conn interface {
	Link
	io.Closer
}

func checkLen(op string, p []byte) error {
	if len(p) > MaxTransfer {
		return &Error{Op: op, Err: ErrTooLarge}
	}
	return nil
}

func deadlineOf(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

func timerOf(timeout time.Duration) (<-chan time.Time, func()) {
	if timeout <= 0 {
		return nil, func() {}
	}
	t := time.NewTimer(timeout)
	return t.C, func() { t.Stop() }
}
