package host

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/transfer"
)

func parseAll(p *Parser, in []byte) (headers []transfer.Header) {
	for _, b := range in {
		if h := p.Parse(b); h != nil {
			headers = append(headers, *h)
		}
	}
	return
}

func TestParser(t *testing.T) {
	digit := transfer.Header{Marker: transfer.MarkerRead, Height: 28, Width: 28, Format: image.Grayscale}
	vga := transfer.Header{Marker: transfer.MarkerWrite, Height: 480, Width: 640, Format: image.RGB565}

	testCases := []struct {
		name   string
		in     []byte
		expect []transfer.Header
	}{
		{"read request", digit.Bytes(), []transfer.Header{digit}},
		{"write request", vga.Bytes(), []transfer.Header{vga}},
		{"leading garbage", append([]byte("hello\r\nSSS"), vga.Bytes()[1:]...), []transfer.Header{vga}},
		{"back to back", append(digit.Bytes(), vga.Bytes()...), []transfer.Header{digit, vga}},
		{"unknown request", append([]byte("STX"), digit.Bytes()...), []transfer.Header{digit}},
		{"marker restart", append([]byte("STS"), digit.Bytes()[1:]...), []transfer.Header{digit}},
		{"bad format", append([]byte{'S', 'T', 'W', 1, 0, 1, 0, 4}, digit.Bytes()...), []transfer.Header{digit}},
		{"zero height", append([]byte{'S', 'T', 'W', 0, 0, 1, 0, 1}, vga.Bytes()...), []transfer.Header{vga}},
		{"truncated", digit.Bytes()[:6], nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p Parser
			require.Equal(t, tc.expect, parseAll(&p, tc.in))
		})
	}
}

func TestParserState(t *testing.T) {
	var p Parser
	require.Equal(t, ScanStateIdle, p.State())
	p.Parse('S')
	require.Equal(t, ScanStateMarker, p.State())
	p.Parse('T')
	require.Equal(t, ScanStateMarker, p.State())
	p.Parse('W')
	require.Equal(t, ScanStateMetadata, p.State())
	p.Reset()
	require.Equal(t, ScanStateIdle, p.State())
	require.Nil(t, p.Parse(1))
	require.Equal(t, ScanStateIdle, p.State())
}

func TestParserMaxSize(t *testing.T) {
	digit := transfer.Header{Marker: transfer.MarkerRead, Height: 28, Width: 28, Format: image.Grayscale}
	noise := []byte{'S', 'T', 'W', 0xff, 0xff, 0xff, 0xff, 3}

	p := Parser{MaxSize: 16 << 20}
	require.Equal(t, []transfer.Header{digit}, parseAll(&p, append(noise, digit.Bytes()...)))
	require.Equal(t, ScanStateIdle, p.State())

	p = Parser{MaxSize: 783}
	require.Empty(t, parseAll(&p, digit.Bytes()))

	// no limit
	p = Parser{}
	require.Len(t, parseAll(&p, noise), 1)
}
