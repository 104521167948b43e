package session

import (
	"bufio"
	"io"
	"net"
	"strings"
)

// netConn adapts a net.Conn to the line-oriented Conn interface.
type netConn struct {
	conn net.Conn
	r    *bufio.Reader
}

// NewNetConn wraps a stream connection for line-oriented request reading and
// frame writing.
func NewNetConn(conn net.Conn) Conn {
	return &netConn{
		conn: conn,
		r:    bufio.NewReader(conn),
	}
}

func (c *netConn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if len(line) == 0 && err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *netConn) WriteFrame(frame string) error {
	_, err := io.WriteString(c.conn, frame)
	return err
}

func (c *netConn) Close() error {
	return c.conn.Close()
}
