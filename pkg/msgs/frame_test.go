package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/transfer"
)

func TestImageFrame(t *testing.T) {
	h := transfer.Header{Marker: transfer.MarkerWrite, Height: 2, Width: 3, Format: image.RGB565}
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	frame := NewImageFrame(KindReceived, h, payload)
	require.NotEmpty(t, frame.Source)
	require.NotZero(t, frame.Timestamp)

	data, err := frame.Encode()
	require.NoError(t, err)
	decoded, err := DecodeImageFrame(data)
	require.NoError(t, err)
	require.Equal(t, frame, decoded)

	d, err := decoded.Descriptor()
	require.NoError(t, err)
	require.Equal(t, uint16(2), d.Height())
	require.Equal(t, uint16(3), d.Width())
	require.Equal(t, image.RGB565, d.Format())
	require.Equal(t, payload, d.Bytes())
}

func TestImageFrameDescriptorInvalid(t *testing.T) {
	_, err := (&ImageFrame{Height: 70000, Width: 1, Format: 1, Payload: []byte{0}}).Descriptor()
	require.ErrorIs(t, err, image.ErrInvalidArgument)
	_, err = (&ImageFrame{Height: 2, Width: 2, Format: 1, Payload: []byte{0}}).Descriptor()
	require.ErrorIs(t, err, image.ErrInvalidArgument)
}

func TestDecodeImageFrameGarbage(t *testing.T) {
	_, err := DecodeImageFrame([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}
