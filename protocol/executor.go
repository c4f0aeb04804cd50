package protocol

import (
	"fmt"
	"net/http"

	"github.com/httpwire/localserver-harness/conn"
)

// ExchangeError reports a failure during a request/response exchange,
// either from a request interceptor or from transport I/O.
type ExchangeError struct {
	Phase string // "process", "send" or "receive"
	Err   error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange failed during %s: %s", e.Phase, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// Executor drives one request/response exchange at a time over an open
// client connection. It is synchronous: Execute returns only after the
// response head has been read (or the exchange failed).
type Executor struct {
	pipeline *Pipeline
}

// NewExecutor creates an executor using the given interceptor pipeline.
// A nil pipeline means requests are sent unmodified.
func NewExecutor(pipeline *Pipeline) *Executor {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	return &Executor{pipeline: pipeline}
}

// Pipeline returns the executor's interceptor pipeline.
func (e *Executor) Pipeline() *Pipeline { return e.pipeline }

// Execute applies the interceptor pipeline to the request, sends it over
// the connection, and reads the response. The execution context records
// the connection, request, and response for interceptors and for
// inspection by the test. The caller remains the owner of the connection.
func (e *Executor) Execute(req *http.Request, c *conn.ClientConnection, ctx *ExecutionContext) (*http.Response, error) {
	if ctx == nil {
		ctx = NewExecutionContext()
	}
	ctx.SetAttribute(AttrConnection, c)
	ctx.SetAttribute(AttrRequest, req)
	ctx.RemoveAttribute(AttrResponse)

	if err := e.pipeline.Process(req, ctx); err != nil {
		return nil, &ExchangeError{Phase: "process", Err: err}
	}
	if err := c.SendRequest(req); err != nil {
		return nil, &ExchangeError{Phase: "send", Err: err}
	}
	resp, err := c.ReceiveResponse(req)
	if err != nil {
		return nil, &ExchangeError{Phase: "receive", Err: err}
	}
	ctx.SetAttribute(AttrResponse, resp)
	return resp, nil
}
