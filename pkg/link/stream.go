package link

import (
	"errors"
	"io"
	"net"
	"os"
	"time"
)

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

// Stream implements Link over an io.ReadWriter.
//
// If the underlying stream supports read/write deadlines (e.g. net.Conn),
// timeouts are enforced with deadlines. Otherwise each call runs the I/O in
// a goroutine bounded by a timer. A call abandoned by timeout keeps running
// in the background and its bytes are discarded: the next call of the same
// direction waits for it to finish first.
type Stream struct {
	rw io.ReadWriter

	pendingRead  chan error
	pendingWrite chan error
}

// NewStream creates a Stream with io.ReadWriter.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{rw: rw}
}

// Write implements Link.
func (s *Stream) Write(p []byte, timeout time.Duration) error {
	if err := checkLen("write", p); err != nil {
		return err
	}
	if d, ok := s.rw.(writeDeadliner); ok {
		if err := d.SetWriteDeadline(deadlineOf(timeout)); err != nil {
			return wrapErr("write", err)
		}
		_, err := s.rw.Write(p)
		return wrapErr("write", err)
	}
	buf := append([]byte(nil), p...)
	return s.within("write", &s.pendingWrite, timeout, func() error {
		_, err := s.rw.Write(buf)
		return err
	})
}

// Read implements Link.
func (s *Stream) Read(p []byte, timeout time.Duration) error {
	if err := checkLen("read", p); err != nil {
		return err
	}
	if d, ok := s.rw.(readDeadliner); ok {
		if err := d.SetReadDeadline(deadlineOf(timeout)); err != nil {
			return wrapErr("read", err)
		}
		_, err := io.ReadFull(s.rw, p)
		return wrapErr("read", err)
	}
	buf := make([]byte, len(p))
	err := s.within("read", &s.pendingRead, timeout, func() error {
		_, err := io.ReadFull(s.rw, buf)
		return err
	})
	if err == nil {
		copy(p, buf)
	}
	return err
}

// Close implements io.Closer.
func (s *Stream) Close() error {
	if closer, ok := s.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Stream) within(op string, pending *chan error, timeout time.Duration, fn func() error) error {
	expired, stop := timerOf(timeout)
	defer stop()
	if *pending != nil {
		select {
		case <-*pending:
			*pending = nil
		case <-expired:
			return &Error{Op: op, Err: ErrTimeout}
		}
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return wrapErr(op, err)
	case <-expired:
		*pending = done
		return &Error{Op: op, Err: ErrTimeout}
	}
}

// wrapErr maps stream errors to link errors. End of stream means the peer
// hung up, which is reported as ErrClosed like a local close.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		err = ErrTimeout
	case errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		err = ErrClosed
	}
	return &Error{Op: op, Err: err}
}
