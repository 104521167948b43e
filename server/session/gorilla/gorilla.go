// Package gorilla adapts gorilla websocket connections to session connections.
package gorilla

import (
	"strings"

	"github.com/gorilla/websocket"

	"github.com/jacobpatterson1549/crossword-extravaganza/server/session"
)

// conn carries the protocol over a websocket: each text message from the
// client is one request line, and each frame is sent as one text message.
type conn struct {
	ws *websocket.Conn
}

// NewConn wraps the websocket connection as a session connection.
func NewConn(ws *websocket.Conn) session.Conn {
	return &conn{ws: ws}
}

func (c *conn) ReadLine() (string, error) {
	_, p, err := c.ws.ReadMessage()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(p), "\r\n"), nil
}

func (c *conn) WriteFrame(frame string) error {
	return c.ws.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (c *conn) Close() error {
	return c.ws.Close()
}
