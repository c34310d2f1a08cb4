package httpclient

import (
	"context"
	nethttp "net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"

	"github.com/gaborage/webclient/logger"
)

// WithRequestID adds a request ID to the context; the client sends it as the
// request ID header and it appears on every log line of the call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return logger.WithRequestID(ctx, id)
}

// RequestIDFromContext returns a request ID from context if present
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return logger.RequestIDFromContext(ctx)
}

// EnsureRequestID returns an existing request ID from context or generates a new one
func EnsureRequestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return newRequestID()
}

func newRequestID() string {
	return uuid.New().String()
}

// NewRequestIDInterceptor creates a request interceptor that adds the X-Request-ID header
func NewRequestIDInterceptor() RequestInterceptor {
	return NewRequestIDInterceptorFor(HeaderXRequestID)
}

// NewRequestIDInterceptorFor creates an interceptor that uses a custom header name
func NewRequestIDInterceptorFor(header string) RequestInterceptor {
	if header == "" {
		header = HeaderXRequestID
	}
	return func(ctx context.Context, req *nethttp.Request) error {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, EnsureRequestID(ctx))
		}
		return nil
	}
}

// injectTraceContext writes traceparent/tracestate for the span active in ctx
func injectTraceContext(ctx context.Context, req *nethttp.Request) {
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// resolveRequestID picks the ID for a logical call: context first, then generator
func (c *client) resolveRequestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	if c.config.NewRequestID != nil {
		if id := c.config.NewRequestID(); id != "" {
			return id
		}
	}
	return newRequestID()
}
