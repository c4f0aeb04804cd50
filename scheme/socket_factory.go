package scheme

import (
	"fmt"
	"net"
	"strconv"

	"github.com/httpwire/localserver-harness/params"
)

// ConnectionError is returned when a socket could not be established:
// connection refused, connect timeout, or an unresolvable host.
type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to %s: %s",
		net.JoinHostPort(e.Host, strconv.Itoa(e.Port)), e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PlainSocketFactory opens plain TCP sockets. It is the factory for the
// standard "http" scheme.
type PlainSocketFactory struct{}

func (f PlainSocketFactory) ConnectSocket(host string, port int, p *params.Params) (net.Conn, error) {
	dialer := net.Dialer{}
	if p != nil {
		dialer.Timeout = p.ConnectTimeout()
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	sock, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Host: host, Port: port, Err: err}
	}
	return sock, nil
}
