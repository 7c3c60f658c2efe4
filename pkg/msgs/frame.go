// Package msgs defines the messages images are relayed with.
package msgs

import (
	"fmt"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/transfer"
)

// Frame kinds.
const (
	// KindSent is an image the host sent to the device.
	KindSent = "sent"
	// KindReceived is an image the host received from the device.
	KindReceived = "received"
)

// ImageFrame carries one transferred image together with its header.
type ImageFrame struct {
	Source    string `protobuf:"bytes,1,opt,name=source,proto3" json:"source,omitempty"`
	Kind      string `protobuf:"bytes,2,opt,name=kind,proto3" json:"kind,omitempty"`
	Height    uint32 `protobuf:"varint,3,opt,name=height,proto3" json:"height,omitempty"`
	Width     uint32 `protobuf:"varint,4,opt,name=width,proto3" json:"width,omitempty"`
	Format    uint32 `protobuf:"varint,5,opt,name=format,proto3" json:"format,omitempty"`
	Payload   []byte `protobuf:"bytes,6,opt,name=payload,proto3" json:"payload,omitempty"`
	Timestamp int64  `protobuf:"varint,7,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *ImageFrame) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ImageFrame) Reset() { *m = ImageFrame{} }

// String implements proto.Message.
func (m *ImageFrame) String() string { return proto.CompactTextString(m) }

// NewImageFrame creates a frame from a transfer header and its payload.
func NewImageFrame(kind string, h transfer.Header, payload []byte) *ImageFrame {
	return &ImageFrame{
		Source:    Source(),
		Kind:      kind,
		Height:    uint32(h.Height),
		Width:     uint32(h.Width),
		Format:    uint32(h.Format),
		Payload:   payload,
		Timestamp: time.Now().UnixNano(),
	}
}

// Descriptor wraps the payload of the frame as an image.
func (m *ImageFrame) Descriptor() (*image.Descriptor, error) {
	if m.Height > 0xffff || m.Width > 0xffff || m.Format > 0xff {
		return nil, fmt.Errorf("%w: frame %dx%d format %d", image.ErrInvalidArgument, m.Width, m.Height, m.Format)
	}
	return image.New(m.Payload, uint16(m.Height), uint16(m.Width), image.Format(m.Format))
}

// Encode serializes the frame.
func (m *ImageFrame) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeImageFrame deserializes a frame.
func DecodeImageFrame(data []byte) (*ImageFrame, error) {
	m := &ImageFrame{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

var source string

// Source identifies this machine in published frames.
func Source() string {
	return source
}

func init() {
	if id, err := machineid.ProtectedID("imglink"); err == nil {
		source = id
	} else if name, err := os.Hostname(); err == nil {
		source = name
	} else {
		source = "unknown"
	}
}
