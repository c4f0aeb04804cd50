package scenarios

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpwire/localserver-harness/protocol"
)

func DoRequestExecutionScenarios(t *T) {
	t.Run("round trip through the echo handler", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		c, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c.Close()

		url := fmt.Sprintf("http://%s:%d/echo/", addr.Host, addr.Port)
		req, err := http.NewRequest("POST", url, strings.NewReader("hello there"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")

		resp, err := t.Fixture.Executor.Execute(req, c, t.Fixture.Context)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, 200, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "hello there", string(body))
	})

	t.Run("interceptors run in pipeline order", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		c, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c.Close()

		var order []string
		record := func(name string) protocol.RequestInterceptor {
			return protocol.RequestInterceptorFunc(func(req *http.Request, ctx *protocol.ExecutionContext) error {
				order = append(order, name)
				return nil
			})
		}
		executor := protocol.NewExecutor(protocol.NewPipeline(record("first"), record("second")))

		req, err := http.NewRequest("GET", fmt.Sprintf("http://%s:%d/echo/", addr.Host, addr.Port), nil)
		require.NoError(t, err)
		resp, err := executor.Execute(req, c, t.Fixture.Context)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("failing interceptor aborts the exchange", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		c, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c.Close()

		ranAfter := false
		failing := protocol.RequestInterceptorFunc(func(req *http.Request, ctx *protocol.ExecutionContext) error {
			return errors.New("interceptor rejected the request")
		})
		after := protocol.RequestInterceptorFunc(func(req *http.Request, ctx *protocol.ExecutionContext) error {
			ranAfter = true
			return nil
		})
		executor := protocol.NewExecutor(protocol.NewPipeline(failing, after))

		req, err := http.NewRequest("GET", fmt.Sprintf("http://%s:%d/echo/", addr.Host, addr.Port), nil)
		require.NoError(t, err)
		resp, err := executor.Execute(req, c, t.Fixture.Context)

		var exchangeErr *protocol.ExchangeError
		require.True(t, errors.As(err, &exchangeErr))
		assert.Equal(t, "process", exchangeErr.Phase)
		assert.Nil(t, resp)
		assert.False(t, ranAfter, "interceptor after the failing one must not run")
	})

	t.Run("execution context records the exchange", func(t *T) {
		addr, err := t.Fixture.ServerAddress()
		require.NoError(t, err)
		c, err := t.Fixture.ConnectTo(addr)
		require.NoError(t, err)
		defer c.Close()

		req, err := http.NewRequest("GET", fmt.Sprintf("http://%s:%d/ping", addr.Host, addr.Port), nil)
		require.NoError(t, err)
		resp, err := t.Fixture.Executor.Execute(req, c, t.Fixture.Context)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Same(t, c, t.Fixture.Context.GetAttribute(protocol.AttrConnection))
		assert.Same(t, resp, t.Fixture.Context.GetAttribute(protocol.AttrResponse))
	})
}
