package scenarios

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Default-handler scenarios probe the server through an ordinary HTTP
// client rather than the harness's raw connection path, to confirm the
// baseline handlers behave for any client.
func DoDefaultHandlerScenarios(t *T) {
	client := func(t *T) *resty.Client {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		return resty.New().SetBaseURL(fmt.Sprintf("http://%s:%d", addr.Host, addr.Port))
	}

	t.Run("ping answers with an empty 200", func(t *T) {
		resp, err := client(t).R().Get("/ping")
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode())
		assert.Empty(t, resp.Body())
	})

	t.Run("echo returns the request body", func(t *T) {
		resp, err := client(t).R().
			SetHeader("Content-Type", "text/plain").
			SetBody("echo this back").
			Post("/echo/")
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode())
		assert.Equal(t, "echo this back", string(resp.Body()))
	})

	t.Run("random serves the requested number of bytes", func(t *T) {
		resp, err := client(t).R().Get("/random/64")
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode())
		assert.Len(t, resp.Body(), 64)
	})

	t.Run("random rejects a malformed length", func(t *T) {
		resp, err := client(t).R().Get("/random/not-a-number")
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode())
	})

	t.Run("unregistered path is a 404", func(t *T) {
		resp, err := client(t).R().Get("/no/such/handler")
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode())
	})
}
