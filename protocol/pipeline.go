package protocol

import (
	"fmt"
	"net/http"
)

// RequestInterceptor is a pipeline stage that inspects or mutates an
// outgoing request before it is sent. Returning an error aborts the
// exchange; no later stage runs and nothing is retried.
type RequestInterceptor interface {
	Process(req *http.Request, ctx *ExecutionContext) error
}

// RequestInterceptorFunc adapts a plain function to RequestInterceptor.
type RequestInterceptorFunc func(req *http.Request, ctx *ExecutionContext) error

func (f RequestInterceptorFunc) Process(req *http.Request, ctx *ExecutionContext) error {
	return f(req, ctx)
}

// Pipeline is an ordered list of request interceptors. Order matters:
// stages that decide message framing (RequestContent) must be added
// before stages that depend on it (RequestConnControl). Ordering is a
// configuration-time concern; the pipeline just runs what it was given.
type Pipeline struct {
	interceptors []RequestInterceptor
}

func NewPipeline(interceptors ...RequestInterceptor) *Pipeline {
	p := &Pipeline{}
	for _, i := range interceptors {
		p.Add(i)
	}
	return p
}

// Add appends an interceptor to the end of the chain.
func (p *Pipeline) Add(i RequestInterceptor) {
	if i != nil {
		p.interceptors = append(p.interceptors, i)
	}
}

// Len returns the number of stages in the chain.
func (p *Pipeline) Len() int { return len(p.interceptors) }

// Process applies each interceptor in order. The first failure aborts the
// chain and is returned to the caller.
func (p *Pipeline) Process(req *http.Request, ctx *ExecutionContext) error {
	for i, interceptor := range p.interceptors {
		if err := interceptor.Process(req, ctx); err != nil {
			return fmt.Errorf("request interceptor %d failed: %w", i, err)
		}
	}
	return nil
}
