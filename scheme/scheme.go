// Package scheme maps transport scheme names (such as "http") to a default
// port and a strategy for opening sockets to a target host.
package scheme

import (
	"fmt"
	"net"

	"github.com/httpwire/localserver-harness/params"
)

// SocketFactory is the capability a Scheme uses to produce sockets.
type SocketFactory interface {
	// ConnectSocket opens a new socket connected to host:port, honoring
	// the connect timeout from the given parameters. Exactly one
	// connection attempt is made.
	ConnectSocket(host string, port int, p *params.Params) (net.Conn, error)
}

// Scheme is a named transport profile. Its identity is its Name; a
// registry holds at most one Scheme per name.
type Scheme struct {
	Name        string
	DefaultPort int
	Factory     SocketFactory
}

// ResolvePort returns the given port if it is positive, otherwise the
// scheme's default port.
func (s Scheme) ResolvePort(port int) int {
	if port > 0 {
		return port
	}
	return s.DefaultPort
}

func (s Scheme) String() string {
	return fmt.Sprintf("%s(default port %d)", s.Name, s.DefaultPort)
}
