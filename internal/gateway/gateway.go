// Package gateway adapts the two request handlers to their transports: AWS
// Lambda (API Gateway HTTP API, REST API proxy, Function URL) and net/http.
package gateway

import (
	"context"
	"strings"
)

// Request is the transport-neutral view of one inbound call.
type Request struct {
	Method   string
	Headers  map[string]string
	Body     []byte
	SourceIP string
}

// Header returns the value of a header, matching the name case-insensitively.
func (r Request) Header(key string) string {
	return headerValue(r.Headers, key)
}

// UserAgent returns the caller's User-Agent header.
func (r Request) UserAgent() string {
	return r.Header("user-agent")
}

// SourceURL returns the page the call was made from, taken from Referer.
func (r Request) SourceURL() string {
	return r.Header("referer")
}

// IsPreflight reports whether the request is a CORS preflight.
func (r Request) IsPreflight() bool {
	return strings.EqualFold(strings.TrimSpace(r.Method), "OPTIONS")
}

// Response is what a handler returns.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Handler serves one request to completion.
type Handler interface {
	Serve(ctx context.Context, req Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) Response

func (f HandlerFunc) Serve(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
