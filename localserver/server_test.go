package localserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

func startedServer(t *testing.T) *Server {
	srv := NewServer(nil)
	srv.RegisterDefaultHandlers()
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func baseURL(t *testing.T, srv *Server) string {
	port, err := srv.ServicePort()
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%d", srv.ServiceHost(), port)
}

func TestStartAssignsEphemeralPort(t *testing.T) {
	srv := startedServer(t)
	port, err := srv.ServicePort()
	require.NoError(t, err)
	assert.Greater(t, port, 0)
	assert.True(t, srv.IsRunning())
}

func TestPortIsStableAcrossRestarts(t *testing.T) {
	srv := startedServer(t)
	first, err := srv.ServicePort()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, srv.Stop())
		require.NoError(t, srv.Start())
		port, err := srv.ServicePort()
		require.NoError(t, err)
		assert.Equal(t, first, port)
	}
}

func TestStopReleasesTheListeningPort(t *testing.T) {
	srv := startedServer(t)
	port, err := srv.ServicePort()
	require.NoError(t, err)
	require.NoError(t, srv.Stop())

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", srv.ServiceHost(), port))
	require.NoError(t, err, "port must be rebindable once Stop returns")
	require.NoError(t, listener.Close())
}

func TestStopWhenNeverStarted(t *testing.T) {
	srv := NewServer(nil)
	require.NoError(t, srv.Stop())
}

func TestStopTwice(t *testing.T) {
	srv := startedServer(t)
	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
}

func TestDoubleStartIsANoOp(t *testing.T) {
	srv := startedServer(t)
	first, err := srv.ServicePort()
	require.NoError(t, err)

	require.NoError(t, srv.Start())
	port, err := srv.ServicePort()
	require.NoError(t, err)
	assert.Equal(t, first, port)
}

func TestServicePortWhileStopped(t *testing.T) {
	srv := NewServer(nil)
	_, err := srv.ServicePort()
	var lifecycle *LifecycleError
	require.True(t, errors.As(err, &lifecycle))
	assert.Equal(t, "port", lifecycle.Op)
}

func TestStartFailsWhenPortIsTaken(t *testing.T) {
	srv := startedServer(t)
	port, err := srv.ServicePort()
	require.NoError(t, err)
	require.NoError(t, srv.Stop())

	// Occupy the pinned port so the restart cannot bind it.
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", srv.ServiceHost(), port))
	require.NoError(t, err)
	defer listener.Close()

	err = srv.Start()
	var lifecycle *LifecycleError
	require.True(t, errors.As(err, &lifecycle))
	assert.Equal(t, "start", lifecycle.Op)
	assert.False(t, srv.IsRunning())
}

func TestRegisteredHandlerIsDispatched(t *testing.T) {
	srv := NewServer(nil)
	srv.Register("/custom/", httphelpers.HandlerWithStatus(418))
	require.NoError(t, srv.Start())
	defer srv.Stop()

	resp, err := http.Get(baseURL(t, srv) + "/custom/anything")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 418, resp.StatusCode)
}

func TestRegistrationAfterStart(t *testing.T) {
	srv := startedServer(t)
	srv.Register("/late/", httphelpers.HandlerWithStatus(202))

	resp, err := http.Get(baseURL(t, srv) + "/late/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 202, resp.StatusCode)
}

func TestLongestPrefixWins(t *testing.T) {
	srv := NewServer(nil)
	srv.Register("/a/", httphelpers.HandlerWithStatus(201))
	srv.Register("/a/b/", httphelpers.HandlerWithStatus(202))
	require.NoError(t, srv.Start())
	defer srv.Stop()

	resp, err := http.Get(baseURL(t, srv) + "/a/b/c")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 202, resp.StatusCode)

	resp, err = http.Get(baseURL(t, srv) + "/a/x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 201, resp.StatusCode)
}

func TestUnregisteredPathIs404(t *testing.T) {
	srv := startedServer(t)
	resp, err := http.Get(baseURL(t, srv) + "/nothing/here")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestEchoHandler(t *testing.T) {
	srv := startedServer(t)

	resp, err := http.Post(baseURL(t, srv)+"/echo/", "text/plain", strings.NewReader("round and back"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "round and back", string(body))
}

func TestEchoHandlerWithoutBody(t *testing.T) {
	srv := startedServer(t)

	resp, err := http.Get(baseURL(t, srv) + "/echo/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestRandomHandler(t *testing.T) {
	srv := startedServer(t)

	resp, err := http.Get(baseURL(t, srv) + "/random/512")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, body, 512)
}

func TestRandomHandlerBadLength(t *testing.T) {
	srv := startedServer(t)

	for _, path := range []string{"/random/", "/random/xyz", "/random/-5"} {
		resp, err := http.Get(baseURL(t, srv) + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 400, resp.StatusCode, "path %s", path)
	}
}

func TestPingHandler(t *testing.T) {
	srv := startedServer(t)

	resp, err := http.Get(baseURL(t, srv) + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
