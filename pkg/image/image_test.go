package image

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name   string
		height uint16
		width  uint16
		format Format
		size   uint64
	}{
		{"mnist digit", 28, 28, Grayscale, 784},
		{"rgb888 128x128", 128, 128, RGB888, 49152},
		{"rgb565 qqvga", QQVGAHeight, QQVGAWidth, RGB565, 38400},
		{"vga grayscale", VGAHeight, VGAWidth, Grayscale, 307200},
		{"single pixel", 1, 1, RGB888, 3},
		{"largest rgb888", 65535, 65535, RGB888, 3 * 65535 * 65535},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.size > 1<<24 {
				// the largest shapes only exercise the size arithmetic
				require.Equal(t, tc.size, SizeOf(tc.height, tc.width, tc.format))
				return
			}
			buf := make([]byte, tc.size)
			d, err := New(buf, tc.height, tc.width, tc.format)
			require.NoError(t, err)
			require.Equal(t, tc.size, d.Size())
			require.Equal(t, tc.height, d.Height())
			require.Equal(t, tc.width, d.Width())
			require.Equal(t, tc.format, d.Format())
			require.Len(t, d.Bytes(), int(tc.size))
		})
	}
}

func TestNewSizeInvariant(t *testing.T) {
	buf := make([]byte, 3*64*64)
	for _, format := range []Format{Grayscale, RGB565, RGB888} {
		for h := uint16(1); h <= 64; h += 7 {
			for w := uint16(1); w <= 64; w += 5 {
				d, err := New(buf, h, w, format)
				require.NoError(t, err)
				require.Equal(t, uint64(format)*uint64(h)*uint64(w), d.Size())
			}
		}
	}
}

func TestNewInvalid(t *testing.T) {
	buf := make([]byte, 16)
	testCases := []struct {
		name   string
		buf    []byte
		height uint16
		width  uint16
		format Format
	}{
		{"nil buffer", nil, 2, 2, Grayscale},
		{"empty buffer", []byte{}, 2, 2, Grayscale},
		{"zero height", buf, 0, 2, Grayscale},
		{"zero width", buf, 2, 0, Grayscale},
		{"zero format", buf, 2, 2, 0},
		{"unknown format", buf, 2, 2, Format(4)},
		{"short buffer", buf, 4, 4, RGB565},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.buf, tc.height, tc.width, tc.format)
			require.ErrorIs(t, err, ErrInvalidArgument)
			require.Nil(t, d)
		})
	}
}

func TestNewBorrowsBuffer(t *testing.T) {
	buf := make([]byte, 4)
	d := MustNew(buf, 2, 2, Grayscale)
	d.Bytes()[3] = 7
	require.Equal(t, byte(7), buf[3])
}

func TestParseFormat(t *testing.T) {
	for in, expect := range map[string]Format{
		"gray": Grayscale, "1": Grayscale, "rgb565": RGB565, "rgb": RGB888, "3": RGB888,
	} {
		f, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, expect, f)
	}
	_, err := ParseFormat("yuv")
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, "rgb565", RGB565.String())
	require.Equal(t, "format(9)", Format(9).String())
}
