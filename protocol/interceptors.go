package protocol

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/httpwire/localserver-harness/params"
)

// RequestContent sets the message-framing headers for requests that carry
// a body: Content-Length when the length is known, chunked transfer
// encoding otherwise, and a charset-qualified Content-Type if the request
// set a bare media type. It must run before any interceptor that depends
// on framing decisions, such as RequestConnControl.
func RequestContent(p *params.Params) RequestInterceptor {
	return RequestInterceptorFunc(func(req *http.Request, ctx *ExecutionContext) error {
		if req.Header.Get("Content-Length") != "" && req.TransferEncoding != nil {
			return errors.New("request has both Content-Length and Transfer-Encoding")
		}
		if req.Body == nil {
			return nil
		}
		if req.ContentLength >= 0 {
			req.Header.Set("Content-Length", strconv.FormatInt(req.ContentLength, 10))
		} else if len(req.TransferEncoding) == 0 {
			req.TransferEncoding = []string{"chunked"}
		}
		ct := req.Header.Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "charset=") && p != nil {
			req.Header.Set("Content-Type", ct+"; charset="+strings.ToLower(p.ContentCharset()))
		}
		return nil
	})
}

// RequestConnControl sets the Connection header if the request did not
// specify one: keep-alive for HTTP/1.1, close otherwise. Runs after
// RequestContent so framing has already been decided.
func RequestConnControl(p *params.Params) RequestInterceptor {
	return RequestInterceptorFunc(func(req *http.Request, ctx *ExecutionContext) error {
		if req.Header.Get("Connection") != "" {
			return nil
		}
		version := params.DefaultProtocolVersion
		if p != nil {
			version = p.ProtocolVersion()
		}
		if version == "HTTP/1.1" {
			req.Header.Set("Connection", "keep-alive")
		} else {
			req.Header.Set("Connection", "close")
		}
		return nil
	})
}

// RequestUserAgent sets the User-Agent header from the parameter bag
// unless the request already has one.
func RequestUserAgent(p *params.Params) RequestInterceptor {
	return RequestInterceptorFunc(func(req *http.Request, ctx *ExecutionContext) error {
		if req.Header.Get("User-Agent") != "" || p == nil {
			return nil
		}
		req.Header.Set("User-Agent", p.UserAgent())
		return nil
	})
}

// RequestExpectContinue sets "Expect: 100-continue" on entity-bearing
// requests when the parameter bag asks for it.
func RequestExpectContinue(p *params.Params) RequestInterceptor {
	return RequestInterceptorFunc(func(req *http.Request, ctx *ExecutionContext) error {
		if p == nil || !p.UseExpectContinue() || req.Body == nil {
			return nil
		}
		if req.Header.Get("Expect") == "" {
			req.Header.Set("Expect", "100-continue")
		}
		return nil
	})
}
