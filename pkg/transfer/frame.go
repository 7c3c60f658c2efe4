package transfer

import (
	"encoding/binary"
	"fmt"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/link"
)

// Marker identifies the direction of an exchange.
type Marker [3]byte

var (
	// MarkerWrite announces a payload sent by the device.
	MarkerWrite = Marker{'S', 'T', 'W'}
	// MarkerRead requests a payload for the device.
	MarkerRead = Marker{'S', 'T', 'R'}
)

// HeaderSize is the size of marker and metadata on the wire.
const HeaderSize = 8

// String implements fmt.Stringer.
func (m Marker) String() string {
	return string(m[:])
}

// IsValid checks if m is MarkerWrite or MarkerRead.
func (m Marker) IsValid() bool {
	return m == MarkerWrite || m == MarkerRead
}

// Header is the marker and metadata preceding a payload.
type Header struct {
	Marker Marker
	Height uint16
	Width  uint16
	Format image.Format
}

// HeaderOf builds the header announcing d.
func HeaderOf(m Marker, d *image.Descriptor) Header {
	return Header{Marker: m, Height: d.Height(), Width: d.Width(), Format: d.Format()}
}

// Size calculates the payload size announced by the header.
func (h Header) Size() uint64 {
	return image.SizeOf(h.Height, h.Width, h.Format)
}

// Fields returns the encoded header split into the marker and each metadata
// field, in wire order.
func (h Header) Fields() [][]byte {
	var height, width [2]byte
	binary.LittleEndian.PutUint16(height[:], h.Height)
	binary.LittleEndian.PutUint16(width[:], h.Width)
	return [][]byte{h.Marker[:], height[:], width[:], {byte(h.Format)}}
}

// Bytes encodes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	for _, field := range h.Fields() {
		b = append(b, field...)
	}
	return b
}

// String implements fmt.Stringer.
func (h Header) String() string {
	return fmt.Sprintf("%v %dx%d %v", h.Marker, h.Width, h.Height, h.Format)
}

// Chunks returns the lengths of the chunks a payload of size bytes is split
// into: full link.MaxTransfer chunks followed by the non-zero remainder.
func Chunks(size uint64) []int {
	quotient, remainder := size/link.MaxTransfer, size%link.MaxTransfer
	chunks := make([]int, 0, quotient+1)
	for i := uint64(0); i < quotient; i++ {
		chunks = append(chunks, link.MaxTransfer)
	}
	if remainder > 0 {
		chunks = append(chunks, int(remainder))
	}
	return chunks
}

// ForEachChunk calls fn with each chunk of buf[:size] in order and stops at
// the first error.
func ForEachChunk(buf []byte, size uint64, fn func(index int, chunk []byte) error) error {
	var off uint64
	for index, n := range Chunks(size) {
		if err := fn(index, buf[off:off+uint64(n)]); err != nil {
			return err
		}
		off += uint64(n)
	}
	return nil
}
