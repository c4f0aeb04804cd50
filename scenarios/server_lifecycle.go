package scenarios

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpwire/localserver-harness/localserver"
)

func DoServerLifecycleScenarios(t *T) {
	t.Run("port stays stable across stop/start cycles", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, t.Fixture.Server.Stop())
			require.NoError(t, t.Fixture.Server.Start())
			port, err := t.Fixture.Server.ServicePort()
			require.NoError(t, err)
			assert.Equal(t, addr.Port, port, "restart cycle %d changed the port", i)
		}
	})

	t.Run("server is reachable whenever running", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		sock, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", addr.Host, addr.Port), time.Second)
		require.NoError(t, err)
		_ = sock.Close()
	})

	t.Run("stop before start is a no-op", func(t *T) {
		srv := localserver.NewServer(t.DebugLogger())
		require.NoError(t, srv.Stop())
	})

	t.Run("double start is a no-op", func(t *T) {
		portBefore, err := t.Fixture.Server.ServicePort()
		require.NoError(t, err)
		require.NoError(t, t.Fixture.Server.Start())
		portAfter, err := t.Fixture.Server.ServicePort()
		require.NoError(t, err)
		assert.Equal(t, portBefore, portAfter)
	})

	t.Run("service port is unavailable while stopped", func(t *T) {
		require.NoError(t, t.Fixture.Server.Stop())
		_, err := t.Fixture.Server.ServicePort()
		var lifecycle *localserver.LifecycleError
		require.True(t, errors.As(err, &lifecycle))
		require.NoError(t, t.Fixture.Server.Start())
	})

	t.Run("stopping releases the listening port", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		require.NoError(t, t.Fixture.Server.Stop())

		// The port must be rebindable immediately once Stop returns.
		listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", addr.Host, addr.Port))
		require.NoError(t, err)
		require.NoError(t, listener.Close())

		require.NoError(t, t.Fixture.Server.Start())
	})
}
