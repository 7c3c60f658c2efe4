package image

import "fmt"

// Format is the pixel format of an image. The value is the number of bytes
// used by one pixel.
type Format byte

// Pixel formats understood on the wire.
const (
	Grayscale Format = 1
	RGB565    Format = 2
	RGB888    Format = 3
)

// Common resolutions.
const (
	VGAWidth    uint16 = 640
	VGAHeight   uint16 = 480
	QVGAWidth   uint16 = 320
	QVGAHeight  uint16 = 240
	QQVGAWidth  uint16 = 160
	QQVGAHeight uint16 = 120
)

// IsValid checks if f is one of the known formats.
func (f Format) IsValid() bool {
	return f >= Grayscale && f <= RGB888
}

// BytesPerPixel returns the byte width of one pixel.
func (f Format) BytesPerPixel() int {
	return int(f)
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case Grayscale:
		return "grayscale"
	case RGB565:
		return "rgb565"
	case RGB888:
		return "rgb888"
	}
	return fmt.Sprintf("format(%d)", byte(f))
}

// ParseFormat parses the name or numeric tag of a format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "grayscale", "gray", "1":
		return Grayscale, nil
	case "rgb565", "2":
		return RGB565, nil
	case "rgb888", "rgb", "3":
		return RGB888, nil
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidArgument, s)
}

// SizeOf calculates the payload size of an image with the given shape.
// The result is 64-bit as the largest RGB888 shape exceeds 32 bits.
func SizeOf(height, width uint16, format Format) uint64 {
	return uint64(format) * uint64(height) * uint64(width)
}
