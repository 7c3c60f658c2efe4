package host

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/transfer"
)

var (
	// ErrSizeMismatch indicates a payload doesn't match the requested shape.
	ErrSizeMismatch = errors.New("payload size mismatch")
	// ErrUnexpectedRequest indicates a request of the wrong direction.
	ErrUnexpectedRequest = errors.New("unexpected request")
	// ErrImageTooLarge indicates a request above Config.MaxImageSize.
	ErrImageTooLarge = errors.New("image too large")
)

// Config defines the timeouts and limits used by a Peer.
type Config struct {
	// PollTimeout bounds each single byte read while scanning for a header.
	// Scanning itself continues until the context is done.
	PollTimeout  time.Duration `toml:"poll_timeout"`
	// ChunkTimeout bounds each payload chunk read or written.
	ChunkTimeout time.Duration `toml:"chunk_timeout"`
	// MaxImageSize is the largest payload accepted in bytes, 0 for no limit.
	// Headers above it are treated as line noise.
	MaxImageSize uint64        `toml:"max_image_size"`
}

var defaultConfig = Config{
	PollTimeout:  100 * time.Millisecond,
	ChunkTimeout: 10 * time.Second,
	MaxImageSize: 16 << 20,
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.PollTimeout, "poll-timeout", defaultConfig.PollTimeout, "Timeout of each byte read while waiting for a request.")
	flag.DurationVar(&defaultConfig.ChunkTimeout, "chunk-timeout", defaultConfig.ChunkTimeout, "Timeout of each payload chunk on the host side.")
	flag.Uint64Var(&defaultConfig.MaxImageSize, "max-image-size", defaultConfig.MaxImageSize, "Largest image payload accepted from the device in bytes, 0 for no limit.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Handler serves requests from the device.
type Handler interface {
	// HandleWrite receives an image sent by the device.
	HandleWrite(ctx context.Context, req transfer.Header, payload []byte) error
	// HandleRead provides the image requested by the device. The returned
	// payload must be exactly req.Size() bytes.
	HandleRead(ctx context.Context, req transfer.Header) ([]byte, error)
}

// Funcs is the func form of Handler. A nil func rejects the request.
type Funcs struct {
	Write func(ctx context.Context, req transfer.Header, payload []byte) error
	Read  func(ctx context.Context, req transfer.Header) ([]byte, error)
}

// HandleWrite implements Handler.
func (f Funcs) HandleWrite(ctx context.Context, req transfer.Header, payload []byte) error {
	if f.Write == nil {
		return ErrUnexpectedRequest
	}
	return f.Write(ctx, req, payload)
}

// HandleRead implements Handler.
func (f Funcs) HandleRead(ctx context.Context, req transfer.Header) ([]byte, error) {
	if f.Read == nil {
		return nil, ErrUnexpectedRequest
	}
	return f.Read(ctx, req)
}

// Peer talks to a device over a link.
type Peer struct {
	Link   link.Link
	Config Config

	parser Parser
}

// NewPeer creates a Peer. A nil conf selects the default config.
func NewPeer(l link.Link, conf *Config) *Peer {
	if conf == nil {
		conf = Default()
	}
	return &Peer{Link: l, Config: *conf}
}

// Poll waits for the next request header.
func (p *Peer) Poll(ctx context.Context) (*transfer.Header, error) {
	buf := make([]byte, 1)
	p.parser.MaxSize = p.Config.MaxImageSize
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.Link.Read(buf, p.Config.PollTimeout); err != nil {
			if link.IsTimeout(err) {
				if p.parser.State() == ScanStateMetadata {
					// a header never arrives in pieces that far apart.
					p.parser.Reset()
				}
				continue
			}
			return nil, err
		}
		if h := p.parser.Parse(buf[0]); h != nil {
			glog.V(2).Infof("request %v", h)
			return h, nil
		}
	}
}

// ReadImage reads the payload announced by a "STW" request.
func (p *Peer) ReadImage(req transfer.Header) ([]byte, error) {
	if req.Marker != transfer.MarkerWrite {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedRequest, req.Marker)
	}
	if err := p.checkSize(req); err != nil {
		return nil, err
	}
	payload := make([]byte, req.Size())
	err := transfer.ForEachChunk(payload, req.Size(), func(index int, chunk []byte) error {
		if err := p.Link.Read(chunk, p.Config.ChunkTimeout); err != nil {
			return &transfer.ChunkError{Index: index, Len: len(chunk), Offset: offsetOf(index), Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteImage streams payload to answer a "STR" request.
func (p *Peer) WriteImage(req transfer.Header, payload []byte) error {
	if req.Marker != transfer.MarkerRead {
		return fmt.Errorf("%w: %v", ErrUnexpectedRequest, req.Marker)
	}
	if err := p.checkSize(req); err != nil {
		return err
	}
	if uint64(len(payload)) != req.Size() {
		return fmt.Errorf("%w: %d bytes for %v", ErrSizeMismatch, len(payload), req)
	}
	return transfer.ForEachChunk(payload, req.Size(), func(index int, chunk []byte) error {
		if err := p.Link.Write(chunk, p.Config.ChunkTimeout); err != nil {
			return &transfer.ChunkError{Index: index, Len: len(chunk), Offset: offsetOf(index), Err: err}
		}
		return nil
	})
}

// Exchange waits for one request and serves it with h.
func (p *Peer) Exchange(ctx context.Context, h Handler) (*transfer.Header, error) {
	req, err := p.Poll(ctx)
	if err != nil {
		return nil, err
	}
	switch req.Marker {
	case transfer.MarkerWrite:
		payload, err := p.ReadImage(*req)
		if err != nil {
			return req, err
		}
		return req, h.HandleWrite(ctx, *req, payload)
	default:
		payload, err := h.HandleRead(ctx, *req)
		if err != nil {
			// the device times out waiting for the payload.
			return req, err
		}
		return req, p.WriteImage(*req, payload)
	}
}

// Serve serves requests until ctx is done or the link fails. Errors of a
// single exchange are logged and the next request is awaited.
func (p *Peer) Serve(ctx context.Context, h Handler) error {
	for {
		req, err := p.Exchange(ctx, h)
		if err == nil {
			continue
		}
		if req == nil {
			return err
		}
		if errors.Is(err, link.ErrClosed) {
			return err
		}
		glog.Warningf("%v failed: %v", req, err)
	}
}

func (p *Peer) checkSize(req transfer.Header) error {
	if limit := p.Config.MaxImageSize; limit > 0 && req.Size() > limit {
		return fmt.Errorf("%w: %v is %d bytes, limit %d", ErrImageTooLarge, req, req.Size(), limit)
	}
	return nil
}

func offsetOf(index int) uint64 {
	return uint64(index) * link.MaxTransfer
}
