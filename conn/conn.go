// Package conn provides the client-side transport connection used by the
// request executor. A ClientConnection wraps exactly one socket for its
// whole lifetime and is never pooled or reused by the harness.
package conn

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/httpwire/localserver-harness/params"
)

// ErrAlreadyBound is returned by Bind when the connection already holds a
// socket. A ClientConnection is bound at most once.
var ErrAlreadyBound = errors.New("connection is already bound to a socket")

// ErrNotBound is returned by I/O operations on a connection that has no
// socket yet, or whose socket has been closed.
var ErrNotBound = errors.New("connection is not bound to an open socket")

// ClientConnection is a bound client-side transport endpoint. Create one
// with New, attach a socket with Bind, then drive request/response
// exchanges through a protocol executor.
type ClientConnection struct {
	sock      net.Conn
	reader    *bufio.Reader
	writer    *bufio.Writer
	soTimeout time.Duration
	open      bool
}

func New() *ClientConnection {
	return &ClientConnection{}
}

// Bind attaches the socket to this connection and applies buffering and
// timeout settings from the parameter bag. Binding a connection twice is
// an error; create a fresh ClientConnection per socket instead.
func (c *ClientConnection) Bind(sock net.Conn, p *params.Params) error {
	if c.sock != nil {
		return ErrAlreadyBound
	}
	if sock == nil {
		return errors.New("cannot bind to a nil socket")
	}
	c.sock = sock
	c.reader = bufio.NewReader(sock)
	c.writer = bufio.NewWriter(sock)
	if p != nil {
		c.soTimeout = p.SoTimeout()
	}
	c.open = true
	return nil
}

// IsOpen reports whether the connection holds a socket that has not been
// closed through this connection.
func (c *ClientConnection) IsOpen() bool { return c.open }

// LocalAddr returns the socket's local address, or nil if unbound.
func (c *ClientConnection) LocalAddr() net.Addr {
	if c.sock == nil {
		return nil
	}
	return c.sock.LocalAddr()
}

// RemoteAddr returns the socket's peer address, or nil if unbound.
func (c *ClientConnection) RemoteAddr() net.Addr {
	if c.sock == nil {
		return nil
	}
	return c.sock.RemoteAddr()
}

// SendRequest writes the request head and body to the socket and flushes
// the write buffer.
func (c *ClientConnection) SendRequest(req *http.Request) error {
	if !c.open {
		return ErrNotBound
	}
	if err := c.setDeadline(); err != nil {
		return err
	}
	if err := req.Write(c.writer); err != nil {
		return err
	}
	return c.writer.Flush()
}

// ReceiveResponse reads one response from the socket. The request it
// responds to must be supplied so that responses to HEAD requests and
// status codes without bodies are framed correctly.
func (c *ClientConnection) ReceiveResponse(req *http.Request) (*http.Response, error) {
	if !c.open {
		return nil, ErrNotBound
	}
	if err := c.setDeadline(); err != nil {
		return nil, err
	}
	return http.ReadResponse(c.reader, req)
}

func (c *ClientConnection) setDeadline() error {
	if c.soTimeout <= 0 {
		return nil
	}
	return c.sock.SetDeadline(time.Now().Add(c.soTimeout))
}

// Close shuts down the socket. Closing an unbound or already-closed
// connection is a no-op.
func (c *ClientConnection) Close() error {
	if c.sock == nil || !c.open {
		return nil
	}
	c.open = false
	return c.sock.Close()
}
