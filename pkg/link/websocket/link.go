// Package websocket implements link.Link over a websocket connection, for
// UARTs bridged to the network.
package websocket

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/robotalks/imglink/pkg/link"
)

// Conn is a link over a websocket.Conn. Bytes are sent as binary frames and
// frame boundaries are ignored on receive.
type Conn struct {
	*link.Stream
	ws *websocket.Conn
}

// New wraps websocket.Conn.
func New(ws *websocket.Conn) *Conn {
	ws.PayloadType = websocket.BinaryFrame
	return &Conn{Stream: link.NewStream(ws), ws: ws}
}

// Dial connects a websocket server.
func Dial(url, origin string) (*Conn, error) {
	if origin == "" {
		origin = "http://localhost/"
	}
	ws, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return New(ws), nil
}

// Handler serves each accepted websocket as a link. The connection is closed
// when fn returns.
func Handler(fn func(*Conn)) http.Handler {
	return websocket.Handler(func(ws *websocket.Conn) {
		conn := New(ws)
		defer conn.Close()
		fn(conn)
	})
}
