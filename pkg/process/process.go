// Package process provides the image operations a device applies between
// receiving an image and sending the result back.
package process

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robotalks/imglink/pkg/image"
)

// Op selects an operation at run time.
type Op int

// Operations.
const (
	// OpNone echoes the input.
	OpNone Op = iota
	// OpThresholdGray binarizes a grayscale image with Otsu's threshold.
	OpThresholdGray
	// OpThresholdRGB binarizes an RGB888 image by channel mean intensity.
	OpThresholdRGB
	// OpErode applies a 3x3 binary erosion.
	OpErode
	// OpDilate applies a 3x3 binary dilation.
	OpDilate
	// OpOpen is erosion followed by dilation.
	OpOpen
	// OpClose is dilation followed by erosion.
	OpClose
)

var opNames = []string{
	OpNone:          "none",
	OpThresholdGray: "threshold-gray",
	OpThresholdRGB:  "threshold-rgb",
	OpErode:         "erode",
	OpDilate:        "dilate",
	OpOpen:          "open",
	OpClose:         "close",
}

// ErrShape indicates input/output descriptors unsuitable for an operation.
var ErrShape = errors.New("unsupported image shape")

// String implements fmt.Stringer.
func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Ops lists the names of all operations.
func Ops() []string {
	return append([]string(nil), opNames...)
}

// ParseOp parses the name of an operation.
func ParseOp(s string) (Op, error) {
	for n, name := range opNames {
		if strings.EqualFold(s, name) {
			return Op(n), nil
		}
	}
	return OpNone, fmt.Errorf("unknown op %q, expect one of %s", s, strings.Join(opNames, ", "))
}

// InputFormat returns the pixel format accepted by op.
func (op Op) InputFormat() image.Format {
	if op == OpThresholdRGB {
		return image.RGB888
	}
	return image.Grayscale
}

// Apply runs op on in and stores the result in out.
//
// Except for OpNone, which requires identical shapes, out must be a
// grayscale image of the same dimensions as in. OpOpen and OpClose use in
// as scratch space, leaving the intermediate result in it.
func Apply(op Op, in, out *image.Descriptor) error {
	if op == OpNone {
		if !in.SameShape(out) {
			return fmt.Errorf("%v: %w: %v to %v", op, ErrShape, in, out)
		}
		copy(out.Bytes(), in.Bytes())
		return nil
	}
	if in.Format() != op.InputFormat() || out.Format() != image.Grayscale ||
		in.Height() != out.Height() || in.Width() != out.Width() {
		return fmt.Errorf("%v: %w: %v to %v", op, ErrShape, in, out)
	}
	w, h := int(in.Width()), int(in.Height())
	src, dst := in.Bytes(), out.Bytes()
	switch op {
	case OpThresholdGray:
		Threshold(src, dst, Otsu(Histogram(src)))
	case OpThresholdRGB:
		ThresholdRGB(src, dst, Otsu(HistogramRGB(src)))
	case OpErode:
		Erode(src, dst, w, h)
	case OpDilate:
		Dilate(src, dst, w, h)
	case OpOpen:
		Erode(src, dst, w, h)
		Dilate(dst, src, w, h)
		copy(dst, src)
	case OpClose:
		Dilate(src, dst, w, h)
		Erode(dst, src, w, h)
		copy(dst, src)
	default:
		return fmt.Errorf("unknown %v", op)
	}
	return nil
}
