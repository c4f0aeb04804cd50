// Package protocol drives a single HTTP request/response exchange over a
// bound client connection, applying an ordered chain of request
// interceptors before the request is sent.
package protocol

import "sync"

// Canonical attribute names used by the executor and the built-in
// interceptors. Tests and custom interceptors may add their own keys.
const (
	AttrConnection = "http.connection"
	AttrTargetHost = "http.target_host"
	AttrRequest    = "http.request"
	AttrResponse   = "http.response"
)

// ExecutionContext carries per-exchange scratch state. It is owned by the
// test fixture and passed explicitly to every operation that needs it;
// nothing in this package reads shared or global state. One context may
// be reused across sequential exchanges.
type ExecutionContext struct {
	attrs map[string]interface{}
	lock  sync.Mutex
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{attrs: make(map[string]interface{})}
}

// GetAttribute returns the value stored under the key, or nil.
func (c *ExecutionContext) GetAttribute(key string) interface{} {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.attrs[key]
}

func (c *ExecutionContext) SetAttribute(key string, value interface{}) {
	c.lock.Lock()
	c.attrs[key] = value
	c.lock.Unlock()
}

func (c *ExecutionContext) RemoveAttribute(key string) {
	c.lock.Lock()
	delete(c.attrs, key)
	c.lock.Unlock()
}
