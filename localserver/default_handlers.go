package localserver

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

// RegisterDefaultHandlers installs the baseline handlers that default
// test scenarios rely on: /echo/ echoes entity bodies back, /random/N
// returns N bytes of generated text, and /ping answers 200 with no body.
func (s *Server) RegisterDefaultHandlers() {
	s.Register("/echo/", http.HandlerFunc(echoHandler))
	s.Register("/random/", http.HandlerFunc(randomHandler))
	s.Register("/ping", httphelpers.HandlerWithStatus(200))
}

// echoHandler writes the request body back with the request's content
// type. Requests without a body get an empty 200 response.
func echoHandler(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case "GET", "HEAD", "DELETE", "OPTIONS":
		w.WriteHeader(200)
		return
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if ct := req.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(200)
	_, _ = w.Write(body)
}

// randomHandler serves a body of generated text whose length in bytes is
// taken from the path, as in /random/2048. A missing or malformed length
// is a 400.
func randomHandler(w http.ResponseWriter, req *http.Request) {
	sizeStr := strings.TrimPrefix(req.URL.Path, "/random/")
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = alphabet[i%len(alphabet)]
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(size))
	w.WriteHeader(200)
	_, _ = w.Write(buf)
}
