package link

import (
	"sync"
	"time"
)

// pipeBuffer is one direction of a Pipe. Writes never block; reads wait
// until enough bytes are buffered.
type pipeBuffer struct {
	lock   sync.Mutex
	data   []byte
	closed bool
	wakeCh chan struct{}
}

func newPipeBuffer() *pipeBuffer {
	return &pipeBuffer{wakeCh: make(chan struct{})}
}

func (b *pipeBuffer) write(p []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.data = append(b.data, p...)
	close(b.wakeCh)
	b.wakeCh = make(chan struct{})
	return nil
}

func (b *pipeBuffer) read(p []byte, expired <-chan time.Time) error {
	for {
		b.lock.Lock()
		if len(b.data) >= len(p) {
			n := copy(p, b.data)
			b.data = b.data[n:]
			b.lock.Unlock()
			return nil
		}
		if b.closed {
			b.lock.Unlock()
			return ErrClosed
		}
		wakeCh := b.wakeCh
		b.lock.Unlock()
		select {
		case <-wakeCh:
		case <-expired:
			return ErrTimeout
		}
	}
}

func (b *pipeBuffer) close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	if !b.closed {
		b.closed = true
		close(b.wakeCh)
	}
}

// PipeEnd is one side of an in-memory full-duplex link.
type PipeEnd struct {
	in  *pipeBuffer
	out *pipeBuffer
}

// Pipe creates a connected pair of in-memory links. Bytes written to one end
// are read from the other. Writes are buffered without limit, like a UART
// transmitter with an ideal peer.
func Pipe() (*PipeEnd, *PipeEnd) {
	a, b := newPipeBuffer(), newPipeBuffer()
	return &PipeEnd{in: a, out: b}, &PipeEnd{in: b, out: a}
}

// Write implements Link.
func (e *PipeEnd) Write(p []byte, timeout time.Duration) error {
	if err := checkLen("write", p); err != nil {
		return err
	}
	if err := e.out.write(p); err != nil {
		return &Error{Op: "write", Err: err}
	}
	return nil
}

// Read implements Link.
func (e *PipeEnd) Read(p []byte, timeout time.Duration) error {
	if err := checkLen("read", p); err != nil {
		return err
	}
	expired, stop := timerOf(timeout)
	defer stop()
	if err := e.in.read(p, expired); err != nil {
		return &Error{Op: "read", Err: err}
	}
	return nil
}

// Buffered returns the number of bytes waiting to be read on this end.
func (e *PipeEnd) Buffered() int {
	e.in.lock.Lock()
	defer e.in.lock.Unlock()
	return len(e.in.data)
}

// Close implements io.Closer. Both directions are closed; pending reads
// on either end fail with ErrClosed once buffered bytes run out.
func (e *PipeEnd) Close() error {
	e.in.close()
	e.out.close()
	return nil
}
