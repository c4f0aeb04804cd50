// Package params defines the client-side parameter bag that is shared by
// the request executor, client connections, and socket factories. A Params
// value is immutable once constructed; derive a modified copy with Copy.
package params

import (
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	DefaultProtocolVersion = "HTTP/1.1"
	DefaultContentCharset  = "UTF-8"
	DefaultUserAgent       = "localserver-harness/1.0"
)

// Params is an immutable configuration bag. All fields have usable
// defaults; use the With* options to override them at construction time.
type Params struct {
	protocolVersion   string
	contentCharset    string
	userAgent         string
	useExpectContinue bool
	connectTimeoutMS  ldvalue.OptionalInt
	soTimeoutMS       ldvalue.OptionalInt
}

type Option func(*Params)

func WithProtocolVersion(v string) Option {
	return func(p *Params) {
		if v != "" {
			p.protocolVersion = v
		}
	}
}

func WithContentCharset(charset string) Option {
	return func(p *Params) {
		if charset != "" {
			p.contentCharset = charset
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(p *Params) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

func WithExpectContinue(enabled bool) Option {
	return func(p *Params) { p.useExpectContinue = enabled }
}

// WithConnectTimeout sets the timeout for establishing a socket
// connection. A zero or negative duration means no timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(p *Params) {
		if d > 0 {
			p.connectTimeoutMS = ldvalue.NewOptionalInt(int(d / time.Millisecond))
		} else {
			p.connectTimeoutMS = ldvalue.OptionalInt{}
		}
	}
}

// WithSoTimeout sets the socket read/write timeout applied to bound
// connections. A zero or negative duration means no timeout.
func WithSoTimeout(d time.Duration) Option {
	return func(p *Params) {
		if d > 0 {
			p.soTimeoutMS = ldvalue.NewOptionalInt(int(d / time.Millisecond))
		} else {
			p.soTimeoutMS = ldvalue.OptionalInt{}
		}
	}
}

// New constructs a Params bag with defaults, then applies the options.
func New(opts ...Option) *Params {
	p := &Params{
		protocolVersion: DefaultProtocolVersion,
		contentCharset:  DefaultContentCharset,
		userAgent:       DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Copy derives a new Params from an existing one with further options
// applied. The receiver is not modified.
func (p *Params) Copy(opts ...Option) *Params {
	c := *p
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return &c
}

func (p *Params) ProtocolVersion() string { return p.protocolVersion }

func (p *Params) ContentCharset() string { return p.contentCharset }

func (p *Params) UserAgent() string { return p.userAgent }

func (p *Params) UseExpectContinue() bool { return p.useExpectContinue }

// ConnectTimeout returns the connect timeout, or zero if none is set.
func (p *Params) ConnectTimeout() time.Duration {
	return time.Duration(p.connectTimeoutMS.OrElse(0)) * time.Millisecond
}

// SoTimeout returns the socket read/write timeout, or zero if none is set.
func (p *Params) SoTimeout() time.Duration {
	return time.Duration(p.soTimeoutMS.OrElse(0)) * time.Millisecond
}
