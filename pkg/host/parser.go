package host

import (
	"encoding/binary"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/transfer"
)

// ScanState indicates how far the parser is into a header.
type ScanState int

const (
	// ScanStateIdle means no marker byte has been seen.
	ScanStateIdle ScanState = iota
	// ScanStateMarker means a partial marker has been matched.
	ScanStateMarker
	// ScanStateMetadata means the marker matched and metadata is being read.
	ScanStateMetadata
)

type parseState int

const (
	stateS        parseState = iota // waiting for 'S'
	stateT                          // waiting for 'T'
	stateKind                       // waiting for 'W' or 'R'
	stateHeightLo                   // waiting for height, low byte
	stateHeightHi                   // waiting for height, high byte
	stateWidthLo                    // waiting for width, low byte
	stateWidthHi                    // waiting for width, high byte
	stateFormat                     // waiting for format
)

// Parser finds request headers in a byte stream.
//
// Bytes before a marker are skipped. A header with an unknown request byte,
// a zero dimension, an unknown format or a payload larger than MaxSize is
// dropped and scanning resumes.
type Parser struct {
	// MaxSize limits the payload size of accepted headers, 0 for no limit.
	MaxSize uint64

	state  parseState
	header transfer.Header
	field  [2]byte
}

// State gets the current scan state.
func (p *Parser) State() ScanState {
	switch {
	case p.state == stateS:
		return ScanStateIdle
	case p.state <= stateKind:
		return ScanStateMarker
	}
	return ScanStateMetadata
}

// Reset drops any partially parsed header.
func (p *Parser) Reset() {
	p.state = stateS
}

// Parse consumes one byte and returns a header once complete.
func (p *Parser) Parse(b byte) *transfer.Header {
	switch p.state {
	case stateS:
		if b == 'S' {
			p.state = stateT
		}
	case stateT:
		switch b {
		case 'T':
			p.state = stateKind
		case 'S':
		default:
			p.state = stateS
		}
	case stateKind:
		marker := transfer.Marker{'S', 'T', b}
		if !marker.IsValid() {
			p.resync(b)
			return nil
		}
		p.header = transfer.Header{Marker: marker}
		p.state = stateHeightLo
	case stateHeightLo, stateWidthLo:
		p.field[0] = b
		p.state++
	case stateHeightHi:
		p.field[1] = b
		p.header.Height = binary.LittleEndian.Uint16(p.field[:])
		p.state = stateWidthLo
	case stateWidthHi:
		p.field[1] = b
		p.header.Width = binary.LittleEndian.Uint16(p.field[:])
		p.state = stateFormat
	case stateFormat:
		p.state = stateS
		p.header.Format = image.Format(b)
		if !p.header.Format.IsValid() || p.header.Height == 0 || p.header.Width == 0 {
			return nil
		}
		if p.MaxSize > 0 && p.header.Size() > p.MaxSize {
			return nil
		}
		h := p.header
		return &h
	}
	return nil
}

func (p *Parser) resync(b byte) {
	if b == 'S' {
		p.state = stateT
	} else {
		p.state = stateS
	}
}
