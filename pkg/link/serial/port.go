// Package serial implements link.Link over a UART using go.bug.st/serial.
package serial

import (
	"time"

	"go.bug.st/serial"

	"github.com/robotalks/imglink/pkg/link"
)

// DefaultBaudRate matches the reference firmware UART setup.
const DefaultBaudRate = 2000000

// Port is a serial port opened as a link.
//
// Reads honor the timeout through the port read timeout. Writes run through
// a link.Stream goroutine: a write abandoned by timeout still completes in
// the background, so the peer may see the rest of a frame the caller already
// gave up on. The next write waits for it first.
type Port struct {
	port   serial.Port
	writer *link.Stream
}

// Open opens a serial port in 8N1 mode.
func Open(name string, baudRate int) (*Port, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err = p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, err
	}
	return New(p), nil
}

// New wraps an opened serial.Port.
func New(p serial.Port) *Port {
	return &Port{port: p, writer: link.NewStream(drainWriter{p})}
}

// Write implements link.Link. The call returns once the bytes have left the
// transmitter or timeout expires.
func (p *Port) Write(b []byte, timeout time.Duration) error {
	return p.writer.Write(b, timeout)
}

// Read implements link.Link using the port read timeout.
func (p *Port) Read(b []byte, timeout time.Duration) error {
	if len(b) > link.MaxTransfer {
		return &link.Error{Op: "read", Err: link.ErrTooLarge}
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for filled := 0; filled < len(b); {
		readTimeout := serial.NoTimeout
		if !deadline.IsZero() {
			if readTimeout = time.Until(deadline); readTimeout <= 0 {
				return &link.Error{Op: "read", Err: link.ErrTimeout}
			}
		}
		if err := p.port.SetReadTimeout(readTimeout); err != nil {
			return &link.Error{Op: "read", Err: err}
		}
		n, err := p.port.Read(b[filled:])
		if err != nil {
			return &link.Error{Op: "read", Err: err}
		}
		if n == 0 {
			return &link.Error{Op: "read", Err: link.ErrTimeout}
		}
		filled += n
	}
	return nil
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}

type drainWriter struct {
	port serial.Port
}

func (w drainWriter) Write(b []byte) (int, error) {
	n, err := w.port.Write(b)
	if err != nil {
		return n, err
	}
	return n, w.port.Drain()
}

func (w drainWriter) Read(b []byte) (int, error) {
	return w.port.Read(b)
}
