// Package device runs the device side application cycle: request an image,
// process it, send the result back.
package device

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/process"
	"github.com/robotalks/imglink/pkg/transfer"
)

// Stats counts completed and failed cycles.
type Stats struct {
	Cycles   uint64
	Failures uint64
}

// App owns the image storage of a device and runs exchanges over a Transport.
type App struct {
	Transport *transfer.Transport
	Input     *image.Descriptor
	Output    *image.Descriptor
	Op        process.Op

	cycles   uint64
	failures uint64
}

// NewApp allocates input and output storage for images of the given shape.
// The output is grayscale unless op is OpNone, which echoes its input. format
// must be the one op accepts, any valid format for OpNone.
func NewApp(t *transfer.Transport, height, width uint16, format image.Format, op process.Op) (*App, error) {
	inFormat, outFormat := format, image.Grayscale
	if op == process.OpNone {
		outFormat = inFormat
	} else if format != op.InputFormat() {
		return nil, fmt.Errorf("%v: %w: %v input", op, process.ErrShape, format)
	}
	in, err := image.New(make([]byte, image.SizeOf(height, width, inFormat)), height, width, inFormat)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	out, err := image.New(make([]byte, image.SizeOf(height, width, outFormat)), height, width, outFormat)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	return &App{Transport: t, Input: in, Output: out, Op: op}, nil
}

// Cycle runs one exchange. A failed receive means no new image this cycle;
// the caller starts over with the next Cycle.
func (a *App) Cycle() error {
	if err := a.Transport.Receive(a.Input); err != nil {
		atomic.AddUint64(&a.failures, 1)
		return fmt.Errorf("receive: %w", err)
	}
	if err := process.Apply(a.Op, a.Input, a.Output); err != nil {
		atomic.AddUint64(&a.failures, 1)
		return err
	}
	if err := a.Transport.Send(a.Output); err != nil {
		atomic.AddUint64(&a.failures, 1)
		return fmt.Errorf("send: %w", err)
	}
	atomic.AddUint64(&a.cycles, 1)
	return nil
}

// Run implements Runnable. Cycles repeat until ctx is done; a blocked receive
// only notices cancellation when its chunk timeout expires, unless the link
// is closed.
func (a *App) Run(ctx context.Context) error {
	glog.Infof("device ready: %v in, %v out, op %v", a.Input, a.Output, a.Op)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := a.Cycle(); err != nil {
			if errors.Is(err, link.ErrClosed) {
				return err
			}
			glog.V(1).Infof("cycle failed: %v", err)
			continue
		}
		glog.V(2).Infof("cycle %d done", atomic.LoadUint64(&a.cycles))
	}
}

// Stats gets the cycle counters.
func (a *App) Stats() Stats {
	return Stats{
		Cycles:   atomic.LoadUint64(&a.cycles),
		Failures: atomic.LoadUint64(&a.failures),
	}
}
