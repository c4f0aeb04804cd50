package scenarios

import (
	"errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpwire/localserver-harness/scheme"
)

func DoSchemeRegistryScenarios(t *T) {
	t.Run("get returns the most recently registered scheme", func(t *T) {
		reg := scheme.NewRegistry()
		reg.Register(scheme.Scheme{Name: "http", DefaultPort: 80, Factory: scheme.PlainSocketFactory{}})
		reg.Register(scheme.Scheme{Name: "http", DefaultPort: 8080, Factory: scheme.PlainSocketFactory{}})

		s, err := reg.Get("http")
		require.NoError(t, err)
		assert.Equal(t, 8080, s.DefaultPort)
	})

	t.Run("get of an unregistered name is a configuration error", func(t *T) {
		reg := scheme.NewRegistry()
		_, err := reg.Get("https")
		var notFound *scheme.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "https", notFound.Name)
	})

	t.Run("fixture registers http by default", func(t *T) {
		s, err := t.Fixture.Schemes.Get("http")
		require.NoError(t, err)
		assert.Equal(t, 80, s.DefaultPort)
	})

	t.Run("resolve port prefers an explicit port", func(t *T) {
		s := scheme.Scheme{Name: "http", DefaultPort: 80}
		assert.Equal(t, 8888, s.ResolvePort(8888))
		assert.Equal(t, 80, s.ResolvePort(0))
	})
}
