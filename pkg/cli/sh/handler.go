package sh

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/imgfile"
	"github.com/robotalks/imglink/pkg/msgs"
	"github.com/robotalks/imglink/pkg/transfer"
)

// ErrNoImage indicates there is nothing to answer a read request with.
var ErrNoImage = errors.New("no image to send")

// Publisher publishes transferred images.
type Publisher interface {
	Publish(kind string, h transfer.Header, payload []byte)
}

// FrameSource provides the latest image to send.
type FrameSource interface {
	Latest() *msgs.ImageFrame
}

// Result summarizes one exchange.
type Result struct {
	Request string `json:"request"`
	Height  uint16 `json:"height"`
	Width   uint16 `json:"width"`
	Format  string `json:"format"`
	Bytes   uint64 `json:"bytes"`
	File    string `json:"file,omitempty"`
}

func resultOf(h transfer.Header, file string) Result {
	return Result{
		Request: h.Marker.String(),
		Height:  h.Height,
		Width:   h.Width,
		Format:  h.Format.String(),
		Bytes:   h.Size(),
		File:    file,
	}
}

// ImageHandler implements host.Handler with image files and the relay.
//
// Read requests are answered with File if set, otherwise with the latest
// outbound frame of Frames, scaled to the requested shape. Received images
// are saved as PNG into OutDir if set. Both directions are published to
// Publisher if set.
type ImageHandler struct {
	File      string
	OutDir    string
	Frames    FrameSource
	Publisher Publisher
	OnResult  func(Result)

	received uint64
}

// HandleRead implements host.Handler.
func (h *ImageHandler) HandleRead(ctx context.Context, req transfer.Header) ([]byte, error) {
	payload, err := h.payloadFor(req)
	if err != nil {
		return nil, err
	}
	if h.Publisher != nil {
		h.Publisher.Publish(msgs.KindSent, req, payload)
	}
	h.report(resultOf(req, h.File))
	return payload, nil
}

func (h *ImageHandler) payloadFor(req transfer.Header) ([]byte, error) {
	if h.File != "" {
		return imgfile.Load(h.File, req.Height, req.Width, req.Format)
	}
	if h.Frames == nil {
		return nil, ErrNoImage
	}
	frame := h.Frames.Latest()
	if frame == nil {
		return nil, ErrNoImage
	}
	d, err := frame.Descriptor()
	if err != nil {
		return nil, err
	}
	if d.Height() == req.Height && d.Width() == req.Width && d.Format() == req.Format {
		return d.Bytes(), nil
	}
	src, err := imgfile.Image(transfer.HeaderOf(transfer.MarkerWrite, d), d.Bytes())
	if err != nil {
		return nil, err
	}
	return imgfile.Payload(src, req.Height, req.Width, req.Format), nil
}

// HandleWrite implements host.Handler.
func (h *ImageHandler) HandleWrite(ctx context.Context, req transfer.Header, payload []byte) error {
	if h.Publisher != nil {
		h.Publisher.Publish(msgs.KindReceived, req, payload)
	}
	n := atomic.AddUint64(&h.received, 1)
	var file string
	if h.OutDir != "" {
		file = filepath.Join(h.OutDir, fmt.Sprintf("frame-%s-%04d.png", time.Now().Format("150405"), n))
		if err := imgfile.Save(file, req, payload); err != nil {
			return err
		}
		glog.V(1).Infof("saved %v to %s", req, file)
	}
	h.report(resultOf(req, file))
	return nil
}

// Received gets the number of images received.
func (h *ImageHandler) Received() uint64 {
	return atomic.LoadUint64(&h.received)
}

func (h *ImageHandler) report(r Result) {
	if h.OnResult != nil {
		h.OnResult(r)
	}
}
