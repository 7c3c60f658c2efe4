// Package dial opens links by URL.
//
// Supported schemes:
//
//	serial:///dev/ttyACM0?baud=2000000   UART, also serial://COM3
//	tcp://host:port                      TCP client
//	tcp-listen://:port                   accept a single TCP connection
//	ws://host/path, wss://host/path      websocket, ?origin= overrides Origin
package dial

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/link/serial"
	"github.com/robotalks/imglink/pkg/link/websocket"
)

// ErrUnsupportedScheme indicates the URL scheme is not known.
var ErrUnsupportedScheme = errors.New("unsupported link scheme")

// DialTimeout bounds connecting to a TCP peer.
var DialTimeout = 5 * time.Second

// Open opens the link addressed by rawURL. Listening schemes block until a
// peer connects or ctx is done.
func Open(ctx context.Context, rawURL string) (link.Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "serial":
		name := u.Path
		if u.Host != "" {
			name = u.Host + u.Path
		}
		if name == "" {
			return nil, fmt.Errorf("serial: missing port name in %q", rawURL)
		}
		baud := 0
		if val := u.Query().Get("baud"); val != "" {
			if baud, err = strconv.Atoi(val); err != nil {
				return nil, fmt.Errorf("serial: invalid baud %q: %w", val, err)
			}
		}
		glog.V(1).Infof("open serial %s baud %d", name, baud)
		port, err := serial.Open(name, baud)
		if err != nil {
			return nil, err
		}
		return port, nil
	case "tcp":
		var d net.Dialer
		dctx, cancel := context.WithTimeout(ctx, DialTimeout)
		defer cancel()
		conn, err := d.DialContext(dctx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		glog.V(1).Infof("connected %s", conn.RemoteAddr())
		return link.NewStream(conn), nil
	case "tcp-listen":
		return accept(ctx, u.Host)
	case "ws", "wss":
		origin := u.Query().Get("origin")
		conn, err := websocket.Dial(rawURL, origin)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func accept(ctx context.Context, addr string) (link.Conn, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	glog.Infof("waiting for peer on %s", ln.Addr())
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()
	conn, err := ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	glog.V(1).Infof("accepted %s", conn.RemoteAddr())
	return link.NewStream(conn), nil
}
