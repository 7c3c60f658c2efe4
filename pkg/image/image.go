package image

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a descriptor can't be built from the inputs.
var ErrInvalidArgument = errors.New("invalid argument")

// Descriptor describes an image stored in caller owned memory.
//
// Size is always derived from Height, Width and Format. The referenced
// buffer must outlive every transfer using the descriptor and must not be
// touched by other code while a transfer is in flight.
type Descriptor struct {
	data   []byte
	height uint16
	width  uint16
	format Format
	size   uint64
}

// New creates a Descriptor over buf. It fails with ErrInvalidArgument when
// buf is empty, any dimension is zero, the format is unknown or buf is
// shorter than the image.
func New(buf []byte, height, width uint16, format Format) (*Descriptor, error) {
	switch {
	case len(buf) == 0:
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidArgument)
	case height == 0:
		return nil, fmt.Errorf("%w: zero height", ErrInvalidArgument)
	case width == 0:
		return nil, fmt.Errorf("%w: zero width", ErrInvalidArgument)
	case format == 0:
		return nil, fmt.Errorf("%w: zero format", ErrInvalidArgument)
	case !format.IsValid():
		return nil, fmt.Errorf("%w: unknown %v", ErrInvalidArgument, format)
	}
	size := SizeOf(height, width, format)
	if uint64(len(buf)) < size {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, image needs %d",
			ErrInvalidArgument, len(buf), size)
	}
	return &Descriptor{
		data:   buf,
		height: height,
		width:  width,
		format: format,
		size:   size,
	}, nil
}

// MustNew is New which panics on error.
func MustNew(buf []byte, height, width uint16, format Format) *Descriptor {
	d, err := New(buf, height, width, format)
	if err != nil {
		panic(err)
	}
	return d
}

// Height gets the number of rows.
func (d *Descriptor) Height() uint16 { return d.height }

// Width gets the number of columns.
func (d *Descriptor) Width() uint16 { return d.width }

// Format gets the pixel format.
func (d *Descriptor) Format() Format { return d.format }

// Size gets the payload size in bytes.
func (d *Descriptor) Size() uint64 { return d.size }

// Bytes returns the image region of the referenced buffer.
func (d *Descriptor) Bytes() []byte {
	return d.data[:d.size]
}

// SameShape checks if both descriptors describe images of identical shape.
func (d *Descriptor) SameShape(o *Descriptor) bool {
	return d.height == o.height && d.width == o.width && d.format == o.format
}

// String implements fmt.Stringer.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%dx%d %v (%d bytes)", d.width, d.height, d.format, d.size)
}
