// Package websocket carries one frame per websocket message.
package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/hwmon.go/pkg/link"
)

// ReadWriter implements link.PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a websocket server.
func Dial(url, origin string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket implements link.PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements link.PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler accepts websocket connections and feeds each message into a
// monitor as one frame. Each connection runs its own FramePump until
// either side closes it or ctx is done.
func Handler(ctx context.Context, m link.BufferFeeder) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		glog.Infof("host connected: %s", conn.Request().RemoteAddr)
		err := link.NewFramePump(New(conn), m).Run(ctx)
		glog.Infof("host disconnected: %s: %v", conn.Request().RemoteAddr, err)
	})
}
