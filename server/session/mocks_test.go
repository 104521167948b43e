package session

import (
	"io"
	"sync"
	"testing"
	"time"
)

// mockConn scripts a client: test code feeds request lines in and reads the
// frames the session writes out.
type mockConn struct {
	lines     chan string
	frames    chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{
		lines:  make(chan string, 16),
		frames: make(chan string, 64),
		closed: make(chan struct{}),
	}
}

func (c *mockConn) ReadLine() (string, error) {
	select {
	case line := <-c.lines:
		return line, nil
	case <-c.closed:
		return "", io.EOF
	}
}

func (c *mockConn) WriteFrame(frame string) error {
	select {
	case c.frames <- frame:
		return nil
	case <-c.closed:
		return io.ErrClosedPipe
	}
}

func (c *mockConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// send feeds the session one request line.
func (c *mockConn) send(t *testing.T, line string) {
	t.Helper()
	select {
	case c.lines <- line:
	case <-time.After(time.Second):
		t.Fatalf("timed out sending request %q", line)
	}
}

// nextFrame waits for the next frame the session writes.
func (c *mockConn) nextFrame(t *testing.T) string {
	t.Helper()
	select {
	case frame := <-c.frames:
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
		return ""
	}
}

// waitClosed waits for the session to close the connection.
func (c *mockConn) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-c.closed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the connection to close")
	}
}
