package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gaborage/webclient/retry"
)

const (
	// HeaderXRequestID is the standard header name for request correlation
	HeaderXRequestID = "X-Request-ID"

	// DefaultMaxResponseBytes caps buffered response bodies (2 MiB)
	DefaultMaxResponseBytes int64 = 2 << 20

	// DefaultMaxPayloadLogBytes caps the body preview logged when payload logging is on
	DefaultMaxPayloadLogBytes = 1024
)

// Client defines the REST client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request represents an HTTP request with all necessary data
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
	Auth    *BasicAuth
}

// Response represents an HTTP response with tracking information
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	// ElapsedTime covers the whole logical call including backoff waits
	ElapsedTime time.Duration
	// CallCount is the number of logical calls made by the client so far
	CallCount int64
	// Attempts is the number of physical attempts made for this call
	Attempts int
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the REST client configuration
type Config struct {
	Retry                retry.Config
	Timeouts             TimeoutConfig
	Transport            TransportOptions
	MaxResponseBytes     int64
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	BasicAuth            *BasicAuth
	DefaultHeaders       map[string]string
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// RequestIDHeader is the header carrying the request ID (default: X-Request-ID)
	RequestIDHeader string
	// NewRequestID generates a request ID when the context carries none (default: uuid)
	NewRequestID func() string
	// EnableW3CTrace injects traceparent/tracestate from the active span
	EnableW3CTrace bool
}

// DefaultConfig returns the production client configuration
func DefaultConfig() *Config {
	return &Config{
		Retry:                retry.DefaultConfig(),
		Timeouts:             DefaultTimeoutConfig(),
		Transport:            DefaultTransportOptions(),
		MaxResponseBytes:     DefaultMaxResponseBytes,
		RequestInterceptors:  []RequestInterceptor{},
		ResponseInterceptors: []ResponseInterceptor{},
		DefaultHeaders:       make(map[string]string),
		MaxPayloadLogBytes:   DefaultMaxPayloadLogBytes,
		RequestIDHeader:      HeaderXRequestID,
		NewRequestID:         newRequestID,
	}
}
