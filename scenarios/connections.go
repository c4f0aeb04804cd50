package scenarios

import (
	"errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpwire/localserver-harness/harness"
	"github.com/httpwire/localserver-harness/scheme"
)

func DoConnectionScenarios(t *T) {
	t.Run("connection peer matches the resolved target", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)

		c, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c.Close()

		require.True(t, c.IsOpen())
		assert.Equal(t, addr.String(), "http://"+c.RemoteAddr().String())
	})

	t.Run("sequential connects return independent connections", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)

		c1, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c1.Close()
		c2, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c2.Close()

		assert.NotSame(t, c1, c2)
		assert.NotEqual(t, c1.LocalAddr().String(), c2.LocalAddr().String())
	})

	t.Run("unregistered scheme is a configuration error", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		addr.Scheme = "https"

		c, err := t.Fixture.ConnectTo(addr)
		var notFound *scheme.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Nil(t, c)
	})

	t.Run("unspecified port falls back to the scheme default", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)

		// Register a scheme whose default port happens to be the
		// server's, then leave the target port unset.
		t.Fixture.Schemes.Register(scheme.Scheme{
			Name:        "http-local",
			DefaultPort: addr.Port,
			Factory:     scheme.PlainSocketFactory{},
		})
		defer func() {
			require.NoError(t, t.Fixture.Reset(harness.FieldSchemes))
		}()

		c, err := t.Fixture.ConnectTo(harness.Target{Host: addr.Host, Scheme: "http-local"})
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, addr.String(), "http://"+c.RemoteAddr().String())
	})

	t.Run("refused connection is a connection error", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		require.NoError(t, t.Fixture.Server.Stop())

		c, err := t.Fixture.ConnectTo(addr)
		var connErr *scheme.ConnectionError
		require.True(t, errors.As(err, &connErr))
		assert.Nil(t, c)

		require.NoError(t, t.Fixture.Server.Start())
	})
}
