// Package harness is the test fixture surface for integration tests that
// need a live in-process HTTP server and raw client-side connections to
// it. A Fixture builds its helper objects lazily on the first SetUp and
// reuses them for every test in the fixture's lifetime; only the server is
// started and stopped per test.
package harness

import (
	"fmt"

	"github.com/httpwire/localserver-harness/conn"
	"github.com/httpwire/localserver-harness/localserver"
	"github.com/httpwire/localserver-harness/logging"
	"github.com/httpwire/localserver-harness/params"
	"github.com/httpwire/localserver-harness/protocol"
	"github.com/httpwire/localserver-harness/scheme"
)

// Target identifies a host to connect to. A zero Port means "use the
// scheme's default port".
type Target struct {
	Host   string
	Port   int
	Scheme string
}

func (t Target) String() string {
	return fmt.Sprintf("%s://%s:%d", t.Scheme, t.Host, t.Port)
}

// Field selects fixture fields for Reset.
type Field uint

const (
	FieldParams Field = 1 << iota
	FieldSchemes
	FieldPipeline
	FieldContext
	FieldExecutor
	FieldServer

	FieldAll = FieldParams | FieldSchemes | FieldPipeline | FieldContext | FieldExecutor | FieldServer
)

// Fixture owns the helper objects shared by all tests in one fixture
// instance. Each field is created at most once, on the first SetUp that
// finds it nil; tests that replace or invalidate a helper should call
// Reset so the next SetUp rebuilds it. Fixtures must not be shared across
// concurrently running test groups; tests within one fixture run
// sequentially.
type Fixture struct {
	// Params is the default client-side parameter bag.
	Params *params.Params
	// Schemes maps scheme names to socket factories.
	Schemes *scheme.Registry
	// Pipeline is the client-side request interceptor chain.
	Pipeline *protocol.Pipeline
	// Context carries per-exchange state for the executor.
	Context *protocol.ExecutionContext
	// Executor drives request/response exchanges.
	Executor *protocol.Executor
	// Server is the local test server.
	Server *localserver.Server

	logger logging.Logger
}

func NewFixture(logger logging.Logger) *Fixture {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Fixture{logger: logger}
}

// SetUp prepares the fixture for one test: it builds any helper object
// that is still nil, then starts the server. Helpers surviving from a
// previous test are reused as-is; in particular the server is restarted,
// not recreated, so its port stays stable. A failure to start the server
// is fatal to the test and is returned as a *localserver.LifecycleError.
func (f *Fixture) SetUp() error {
	if f.Params == nil {
		f.Params = params.New()
	}
	if f.Schemes == nil {
		f.Schemes = scheme.NewRegistry()
		f.Schemes.Register(scheme.Scheme{
			Name:        "http",
			DefaultPort: 80,
			Factory:     scheme.PlainSocketFactory{},
		})
	}
	if f.Pipeline == nil {
		// Content framing must be decided before connection control.
		f.Pipeline = protocol.NewPipeline(
			protocol.RequestContent(f.Params),
			protocol.RequestConnControl(f.Params),
		)
	}
	if f.Context == nil {
		f.Context = protocol.NewExecutionContext()
	}
	if f.Executor == nil {
		f.Executor = protocol.NewExecutor(f.Pipeline)
	}
	if f.Server == nil {
		f.Server = localserver.NewServer(f.logger)
		f.Server.RegisterDefaultHandlers()
	}
	return f.Server.Start()
}

// TearDown stops the server. Every other helper object stays in place for
// the next test. Stop errors are surfaced, not swallowed.
func (f *Fixture) TearDown() error {
	if f.Server == nil {
		return nil
	}
	return f.Server.Stop()
}

// Reset nils the selected fields so that the next SetUp rebuilds them.
// Resetting FieldServer while the server is running stops it first and
// reports any stop failure.
func (f *Fixture) Reset(fields Field) error {
	var err error
	if fields&FieldServer != 0 {
		if f.Server != nil {
			err = f.Server.Stop()
		}
		f.Server = nil
	}
	if fields&FieldParams != 0 {
		f.Params = nil
	}
	if fields&FieldSchemes != 0 {
		f.Schemes = nil
	}
	if fields&FieldPipeline != 0 {
		f.Pipeline = nil
	}
	if fields&FieldContext != 0 {
		f.Context = nil
	}
	if fields&FieldExecutor != 0 {
		f.Executor = nil
	}
	return err
}

// ServerAddress returns the running server's host, port and scheme.
func (f *Fixture) ServerAddress() (Target, error) {
	if f.Server == nil {
		return Target{}, fmt.Errorf("fixture has no server; call SetUp first")
	}
	port, err := f.Server.ServicePort()
	if err != nil {
		return Target{}, err
	}
	return Target{Host: f.Server.ServiceHost(), Port: port, Scheme: "http"}, nil
}

// ConnectTo opens a new connection to the target using the fixture's
// default parameters. See ConnectToWith.
func (f *Fixture) ConnectTo(target Target) (*conn.ClientConnection, error) {
	return f.ConnectToWith(target, f.Params)
}

// ConnectToWith opens a new connection to the target using the given
// parameters. The scheme is resolved through the fixture's registry; an
// unregistered scheme fails with *scheme.NotFoundError before any socket
// is opened. If the target does not specify a port, the scheme's default
// port is used. Exactly one socket is opened per call and ownership of
// the returned connection passes entirely to the caller; the harness
// performs no pooling and keeps no reference.
func (f *Fixture) ConnectToWith(target Target, p *params.Params) (*conn.ClientConnection, error) {
	if f.Schemes == nil {
		return nil, fmt.Errorf("fixture has no scheme registry; call SetUp first")
	}
	schm, err := f.Schemes.Get(target.Scheme)
	if err != nil {
		return nil, err
	}
	port := schm.ResolvePort(target.Port)

	sock, err := schm.Factory.ConnectSocket(target.Host, port, p)
	if err != nil {
		return nil, err
	}
	c := conn.New()
	if err := c.Bind(sock, p); err != nil {
		_ = sock.Close()
		return nil, err
	}
	f.logger.Printf("opened connection %s -> %s", c.LocalAddr(), c.RemoteAddr())
	return c, nil
}
