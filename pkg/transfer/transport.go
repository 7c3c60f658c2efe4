package transfer

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/link"
)

// Transport moves images described by image.Descriptor over a link.Link.
//
// A Transport never allocates image memory: payloads are written from and
// read into the descriptor's buffer. It is not safe for concurrent use; one
// exchange must complete before the next starts.
type Transport struct {
	Link   link.Link
	Config Config
}

// New creates a Transport. A nil conf selects the default config.
func New(l link.Link, conf *Config) *Transport {
	if conf == nil {
		conf = Default()
	}
	return &Transport{Link: l, Config: *conf}
}

// Send writes d to the link announced by MarkerWrite.
//
// Write failures are not reported: every write is attempted and Send returns
// nil once they are done and DrainDelay has passed. A dropped chunk is only
// visible in the log (-v=1). Errors are only returned for an invalid
// descriptor.
func (t *Transport) Send(d *image.Descriptor) error {
	if d == nil {
		return fmt.Errorf("send: %w: nil descriptor", image.ErrInvalidArgument)
	}
	h := HeaderOf(MarkerWrite, d)
	glog.V(2).Infof("send %v", h)
	t.writeHeader(h)
	ForEachChunk(d.Bytes(), d.Size(), func(index int, chunk []byte) error {
		glog.V(4).Infof("send chunk %d: %d bytes", index, len(chunk))
		if err := t.Link.Write(chunk, t.Config.SendChunkTimeout); err != nil {
			glog.V(1).Infof("send chunk %d dropped: %v", index, err)
		}
		return nil
	})
	if t.Config.DrainDelay > 0 {
		time.Sleep(t.Config.DrainDelay)
	}
	return nil
}

// Receive requests an image with MarkerRead and d's current shape, then reads
// the payload into d's buffer.
//
// The first chunk which fails aborts the call with a *ChunkError wrapping the
// link error (errors.Is(err, link.ErrTimeout) for timeouts). Nothing is
// retried and the buffer content is undefined after a failure.
func (t *Transport) Receive(d *image.Descriptor) error {
	if d == nil {
		return fmt.Errorf("receive: %w: nil descriptor", image.ErrInvalidArgument)
	}
	h := HeaderOf(MarkerRead, d)
	glog.V(2).Infof("receive %v", h)
	t.writeHeader(h)
	var off uint64
	return ForEachChunk(d.Bytes(), d.Size(), func(index int, chunk []byte) error {
		glog.V(4).Infof("receive chunk %d: %d bytes", index, len(chunk))
		if err := t.Link.Read(chunk, t.Config.ReceiveChunkTimeout); err != nil {
			return &ChunkError{Index: index, Offset: off, Len: len(chunk), Err: err}
		}
		off += uint64(len(chunk))
		return nil
	})
}

// writeHeader writes the marker and each metadata field separately.
// Failures are logged only; the peer detects a broken header by itself.
func (t *Transport) writeHeader(h Header) {
	for _, field := range h.Fields() {
		if err := t.Link.Write(field, t.Config.MetadataTimeout); err != nil {
			glog.V(1).Infof("%v metadata write failed: %v", h.Marker, err)
		}
	}
}
