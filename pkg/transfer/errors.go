package transfer

import "fmt"

// ChunkError reports the payload chunk which failed a Receive.
type ChunkError struct {
	Index  int
	Offset uint64
	Len    int
	Err    error
}

// Error implements error.
func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (offset %d, %d bytes): %v", e.Index, e.Offset, e.Len, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *ChunkError) Unwrap() error {
	return e.Err
}
