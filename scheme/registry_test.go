package scheme

import (
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpwire/localserver-harness/params"
)

func TestRegistryReturnsLastRegisteredScheme(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Scheme{Name: "http", DefaultPort: 80, Factory: PlainSocketFactory{}})
	reg.Register(Scheme{Name: "http", DefaultPort: 8080, Factory: PlainSocketFactory{}})

	s, err := reg.Get("http")
	require.NoError(t, err)
	assert.Equal(t, 8080, s.DefaultPort)
}

func TestRegistryGetUnregisteredName(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Scheme{Name: "http", DefaultPort: 80})

	_, err := reg.Get("https")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "https", notFound.Name)
	assert.Contains(t, err.Error(), "https")
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.Names())
	reg.Register(Scheme{Name: "http", DefaultPort: 80})
	reg.Register(Scheme{Name: "alt", DefaultPort: 8080})
	assert.ElementsMatch(t, []string{"http", "alt"}, reg.Names())
}

func TestResolvePort(t *testing.T) {
	s := Scheme{Name: "http", DefaultPort: 80}
	assert.Equal(t, 8080, s.ResolvePort(8080))
	assert.Equal(t, 80, s.ResolvePort(0))
	assert.Equal(t, 80, s.ResolvePort(-1))
}

func TestPlainSocketFactoryConnects(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		c, err := listener.Accept()
		if err == nil {
			c.Close()
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	sock, err := PlainSocketFactory{}.ConnectSocket(addr.IP.String(), addr.Port, params.New())
	require.NoError(t, err)
	assert.Equal(t, listener.Addr().String(), sock.RemoteAddr().String())
	require.NoError(t, sock.Close())
}

func TestPlainSocketFactoryConnectionRefused(t *testing.T) {
	// Bind and immediately close a listener so the port is known free.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	p := params.New(params.WithConnectTimeout(time.Second))
	sock, err := PlainSocketFactory{}.ConnectSocket("127.0.0.1", port, p)
	require.Error(t, err)
	assert.Nil(t, sock)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, port, connErr.Port)
	assert.NotNil(t, connErr.Unwrap())
}

func TestConnectedSocketCarriesHTTP(t *testing.T) {
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	})}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = server.Serve(listener) }()
	defer server.Close()

	addr := listener.Addr().(*net.TCPAddr)
	sock, err := PlainSocketFactory{}.ConnectSocket("127.0.0.1", addr.Port, params.New())
	require.NoError(t, err)
	defer sock.Close()

	_, err = sock.Write([]byte("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, err := sock.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "HTTP/1.1 204")
}
