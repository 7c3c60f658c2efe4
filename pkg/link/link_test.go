package link

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, a.Write([]byte("ST"), time.Millisecond))
	require.NoError(t, a.Write([]byte("W"), time.Millisecond))
	require.Equal(t, 3, b.Buffered())

	buf := make([]byte, 3)
	require.NoError(t, b.Read(buf, time.Second))
	require.Equal(t, []byte("STW"), buf)

	err := b.Read(buf, 10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, IsTimeout(err))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		assert.NoError(t, b.Write([]byte{1, 2, 3}, 0))
	}()
	require.NoError(t, a.Read(buf, time.Second))
	require.Equal(t, []byte{1, 2, 3}, buf)
	wg.Wait()

	require.NoError(t, a.Close())
	require.ErrorIs(t, b.Read(buf, time.Second), ErrClosed)
	require.ErrorIs(t, b.Write(buf, time.Second), ErrClosed)
}

func TestTooLarge(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	big := make([]byte, MaxTransfer+1)
	require.ErrorIs(t, a.Write(big, 0), ErrTooLarge)
	require.ErrorIs(t, b.Read(big, 0), ErrTooLarge)
	require.Zero(t, b.Buffered())

	require.NoError(t, a.Write(big[:MaxTransfer], 0))
	require.NoError(t, b.Read(big[:MaxTransfer], time.Second))

	s := NewStream(&bytes.Buffer{})
	require.ErrorIs(t, s.Write(big, 0), ErrTooLarge)
	require.ErrorIs(t, s.Read(big, 0), ErrTooLarge)
}

// blockingReader never returns until released.
type blockingReader struct {
	releaseCh chan []byte
	bytes.Buffer
}

func (r *blockingReader) Read(p []byte) (int, error) {
	data, ok := <-r.releaseCh
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func TestStreamFallback(t *testing.T) {
	rw := &blockingReader{releaseCh: make(chan []byte)}
	s := NewStream(rw)

	require.NoError(t, s.Write([]byte("STR"), time.Second))
	require.Equal(t, "STR", rw.String())

	buf := make([]byte, 2)
	require.ErrorIs(t, s.Read(buf, 10*time.Millisecond), ErrTimeout)

	// the abandoned read consumes the first bytes released.
	go func() {
		rw.releaseCh <- []byte{9, 9}
		rw.releaseCh <- []byte{1, 2}
	}()
	require.NoError(t, s.Read(buf, time.Second))
	require.Equal(t, []byte{1, 2}, buf)

	close(rw.releaseCh)
	err := s.Read(buf, time.Second)
	require.Error(t, err)
	var linkErr *Error
	require.ErrorAs(t, err, &linkErr)
	require.Equal(t, "read", linkErr.Op)
	require.ErrorIs(t, err, ErrClosed)
}

func TestStreamDeadline(t *testing.T) {
	c1, c2 := net.Pipe()
	s1, s2 := NewStream(c1), NewStream(c2)
	defer s1.Close()
	defer s2.Close()

	buf := make([]byte, 4)
	require.ErrorIs(t, s1.Read(buf, 10*time.Millisecond), ErrTimeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s2.Write([]byte{1, 2, 3, 4}, time.Second)
	}()
	require.NoError(t, s1.Read(buf, time.Second))
	require.NoError(t, <-errCh)
	require.Equal(t, []byte{1, 2, 3, 4}, buf)

	// net.Pipe is unbuffered so a write without a reader times out.
	require.ErrorIs(t, s2.Write(buf, 10*time.Millisecond), ErrTimeout)

	require.NoError(t, s2.Close())
	require.ErrorIs(t, s1.Read(buf, time.Second), ErrClosed)
	require.ErrorIs(t, s1.Write(buf, time.Second), ErrClosed)
	require.NoError(t, s1.Close())
	// deadline setters fail on a locally closed pipe.
	require.ErrorIs(t, s1.Read(buf, time.Second), ErrClosed)
	require.ErrorIs(t, s1.Write(buf, time.Second), ErrClosed)
}

func TestStreamPeerHangup(t *testing.T) {
	c1, c2 := net.Pipe()
	s := NewStream(c1)
	defer s.Close()
	go func() {
		buf := make([]byte, 2)
		io.ReadFull(c2, buf)
		c2.Write([]byte{1})
		c2.Close()
	}()
	require.NoError(t, s.Write([]byte("ST"), time.Second))
	buf := make([]byte, 4)
	// a partial read before hangup is io.ErrUnexpectedEOF underneath.
	err := s.Read(buf, time.Second)
	require.ErrorIs(t, err, ErrClosed)
	require.False(t, IsTimeout(err))
}
