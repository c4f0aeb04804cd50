// Package localserver provides an in-process HTTP server for integration
// tests. A Server binds an OS-assigned ephemeral port on its first start
// and keeps that port across stop/start cycles for as long as the same
// Server value is reused.
package localserver

import (
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/httpwire/localserver-harness/logging"
)

const readinessTimeout = time.Second * 5

// DefaultHost is the loopback address the server binds to.
const DefaultHost = "127.0.0.1"

// LifecycleError reports a failure to start or stop the server. Start
// failures are fatal to the test that needed the server.
type LifecycleError struct {
	Op  string // "start", "stop" or "port"
	Err error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("local test server %s: %s", e.Op, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }

type state int

const (
	stateStopped state = iota
	stateStarting
	stateRunning
)

// Server hosts a minimal HTTP server for the duration of a test. The zero
// value is not usable; construct with NewServer. All methods are safe for
// sequential use from the test goroutine; the accept loop runs on its own
// goroutine and is joined by Stop.
type Server struct {
	host     string
	port     int // 0 until the first successful bind, then pinned
	handlers map[string]http.Handler
	state    state
	listener net.Listener
	httpSrv  *http.Server
	serveErr chan error
	logger   logging.Logger
	lock     sync.Mutex
}

func NewServer(logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Server{
		host:     DefaultHost,
		handlers: make(map[string]http.Handler),
		logger:   logger,
	}
}

// Register installs a handler for all request paths at or below the given
// prefix. Registering the same prefix again replaces the handler. Callable
// both before and after Start.
func (s *Server) Register(prefix string, h http.Handler) {
	s.lock.Lock()
	s.handlers[prefix] = h
	s.lock.Unlock()
}

// Start binds the listening socket and serves until Stop. The first start
// binds an ephemeral port; later starts of the same Server bind the same
// port, so the address handed to tests stays stable across restarts.
// Start blocks until the server answers a readiness probe. Calling Start
// on a server that is already running is a documented no-op.
func (s *Server) Start() error {
	s.lock.Lock()
	if s.state != stateStopped {
		s.lock.Unlock()
		return nil
	}
	s.state = stateStarting
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	s.lock.Unlock()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.lock.Lock()
		s.state = stateStopped
		s.lock.Unlock()
		return &LifecycleError{Op: "start", Err: err}
	}

	srv := &http.Server{Handler: http.HandlerFunc(s.serveHTTP)}
	serveErr := make(chan error, 1)
	go func() {
		err := srv.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	if err := s.awaitReady(port); err != nil {
		_ = srv.Close()
		<-serveErr
		s.lock.Lock()
		s.state = stateStopped
		s.lock.Unlock()
		return &LifecycleError{Op: "start", Err: err}
	}

	s.lock.Lock()
	s.port = port
	s.listener = listener
	s.httpSrv = srv
	s.serveErr = serveErr
	s.state = stateRunning
	s.lock.Unlock()
	s.logger.Printf("local test server listening on %s:%d", s.host, port)
	return nil
}

// awaitReady polls the listener with HEAD requests until it responds, so
// that Start only returns once the server is actually accepting.
func (s *Server) awaitReady(port int) error {
	deadline := time.NewTimer(readinessTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 5)
	defer ticker.Stop()
	url := fmt.Sprintf("http://%s:%d/", s.host, port)
	for {
		select {
		case <-deadline.C:
			return fmt.Errorf("could not detect own listener at %s", url)
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(url)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == 200 {
					return nil
				}
			}
		}
	}
}

// Stop shuts the server down, forcibly closing any in-flight connections,
// and returns once the accept loop has exited and the listening port is
// released. Stopping a server that is not running is a no-op.
func (s *Server) Stop() error {
	s.lock.Lock()
	if s.state != stateRunning {
		s.lock.Unlock()
		return nil
	}
	srv := s.httpSrv
	serveErr := s.serveErr
	s.httpSrv = nil
	s.listener = nil
	s.serveErr = nil
	s.state = stateStopped
	s.lock.Unlock()

	closeErr := srv.Close()
	err := <-serveErr
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return &LifecycleError{Op: "stop", Err: err}
	}
	s.logger.Printf("local test server on port %d stopped", s.port)
	return nil
}

// ServicePort returns the bound port. It is only valid while the server
// is running (or immediately after a successful Start).
func (s *Server) ServicePort() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state != stateRunning {
		return 0, &LifecycleError{Op: "port", Err: fmt.Errorf("server is not running")}
	}
	return s.port, nil
}

// ServiceHost returns the host address the server binds to.
func (s *Server) ServiceHost() string { return s.host }

// IsRunning reports whether the server is currently accepting requests.
func (s *Server) IsRunning() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state == stateRunning
}

// serveHTTP dispatches to the registered handler with the longest prefix
// matching the request path. HEAD requests to the root path answer the
// readiness probe directly.
func (s *Server) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == "HEAD" && req.URL.Path == "/" {
		w.WriteHeader(200)
		return
	}

	s.lock.Lock()
	var prefixes []string
	for prefix := range s.handlers {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	var handler http.Handler
	for _, prefix := range prefixes {
		if strings.HasPrefix(req.URL.Path, prefix) {
			handler = s.handlers[prefix]
			break
		}
	}
	s.lock.Unlock()

	if handler == nil {
		s.logger.Printf("no handler registered for %s", req.URL.Path)
		w.WriteHeader(404)
		return
	}
	handler.ServeHTTP(w, req)
}
