package dial

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/link"
)

func TestOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	conn, err := Open(context.Background(), "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	peer := link.NewStream(<-accepted)
	defer peer.Close()

	require.NoError(t, conn.Write([]byte("STR"), time.Second))
	buf := make([]byte, 3)
	require.NoError(t, peer.Read(buf, time.Second))
	require.Equal(t, "STR", string(buf))
}

func TestOpenTCPListenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := Open(ctx, "tcp-listen://127.0.0.1:0")
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenInvalid(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, "carrier-pigeon://coop")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
	_, err = Open(ctx, "serial:///dev/ttyS0?baud=fast")
	require.Error(t, err)
	_, err = Open(ctx, "serial://")
	require.Error(t, err)
}
