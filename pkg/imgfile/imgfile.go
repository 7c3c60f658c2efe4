// Package imgfile converts between image files and transfer payloads.
//
// Payload layouts match the reference host: grayscale is one byte per
// pixel, RGB565 is a little endian 16-bit word per pixel with red in the top
// bits, RGB888 is three bytes per pixel in B, G, R order.
package imgfile

import (
	"encoding/binary"
	"fmt"
	goimage "image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	"golang.org/x/image/draw"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/transfer"
)

// Load reads an image file and converts it to a payload of the given shape.
func Load(path string, height, width uint16, format image.Format) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, height, width, format)
}

// Decode decodes an image, scales it to height x width and converts it to
// format.
func Decode(r io.Reader, height, width uint16, format image.Format) ([]byte, error) {
	if !format.IsValid() || height == 0 || width == 0 {
		return nil, fmt.Errorf("%w: %dx%d %v", image.ErrInvalidArgument, width, height, format)
	}
	src, _, err := goimage.Decode(r)
	if err != nil {
		return nil, err
	}
	return Payload(src, height, width, format), nil
}

// Payload scales src to height x width and encodes its pixels in format.
func Payload(src goimage.Image, height, width uint16, format image.Format) []byte {
	rgba := goimage.NewRGBA(goimage.Rect(0, 0, int(width), int(height)))
	if src.Bounds().Dx() == int(width) && src.Bounds().Dy() == int(height) {
		draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	out := make([]byte, image.SizeOf(height, width, format))
	for i, n := 0, int(height)*int(width); i < n; i++ {
		r, g, b := rgba.Pix[i*4], rgba.Pix[i*4+1], rgba.Pix[i*4+2]
		switch format {
		case image.Grayscale:
			out[i] = color.GrayModel.Convert(color.RGBA{R: r, G: g, B: b, A: 0xff}).(color.Gray).Y
		case image.RGB565:
			binary.LittleEndian.PutUint16(out[i*2:], uint16(r>>3)<<11|uint16(g>>2)<<5|uint16(b>>3))
		case image.RGB888:
			out[i*3], out[i*3+1], out[i*3+2] = b, g, r
		}
	}
	return out
}

// Image wraps a payload described by h as an image.Image.
func Image(h transfer.Header, payload []byte) (goimage.Image, error) {
	if uint64(len(payload)) != h.Size() || !h.Format.IsValid() {
		return nil, fmt.Errorf("%w: %d bytes for %v", image.ErrInvalidArgument, len(payload), h)
	}
	w, ht := int(h.Width), int(h.Height)
	rect := goimage.Rect(0, 0, w, ht)
	if h.Format == image.Grayscale {
		return &goimage.Gray{Pix: payload, Stride: w, Rect: rect}, nil
	}
	img := goimage.NewRGBA(rect)
	for i, n := 0, w*ht; i < n; i++ {
		var r, g, b byte
		if h.Format == image.RGB565 {
			v := binary.LittleEndian.Uint16(payload[i*2:])
			r, g, b = expand(v>>11, 5), expand(v>>5&0x3f, 6), expand(v&0x1f, 5)
		} else {
			b, g, r = payload[i*3], payload[i*3+1], payload[i*3+2]
		}
		img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = r, g, b, 0xff
	}
	return img, nil
}

// Encode writes the payload described by h as PNG.
func Encode(w io.Writer, h transfer.Header, payload []byte) error {
	img, err := Image(h, payload)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Save writes the payload described by h to a PNG file.
func Save(path string, h transfer.Header, payload []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, h, payload); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// expand scales a channel of bits width to 8 bits.
func expand(v uint16, bits uint) byte {
	return byte(v<<(8-bits) | v>>(2*bits-8))
}
