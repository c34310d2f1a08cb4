package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/webclient/logger"
	"github.com/gaborage/webclient/retry"
)

// client implements the Client interface
type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	config               *Config
	executor             *retry.Executor
	tracer               trace.Tracer
	limiter              *rate.Limiter
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	callCount            int64
}

// NewClient creates a new REST client with the default configuration
func NewClient(log logger.Logger) (Client, error) {
	return NewBuilder(log).Build()
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs one logical call. Non-2xx responses are failures; the last
// response received is returned alongside the error when there was one.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, &retry.FinalFailure{Tag: retry.Permanent, Err: err}
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	requestID := c.resolveRequestID(ctx)

	ctx = logger.WithRequestID(ctx, requestID)
	ctx = retry.WithCallName(ctx, callName(method, req.URL))
	ctx, span := c.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", req.URL),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	call := callInfo{method: method, req: req, requestID: requestID, start: start, count: callCount}

	var last *Response
	var attempts int
	resp, err := retry.Do(ctx, c.executor, func(ctx context.Context, attempt retry.CallAttempt) (*Response, error) {
		attempts = attempt.Number
		r, err := c.attempt(ctx, call, attempt.Number)
		if r != nil {
			last = r
		}
		return r, err
	})

	span.SetAttributes(attribute.Int("http.request.attempts", attempts))
	if last != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", last.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return last, err
	}
	return resp, nil
}

// callInfo is the state shared by every attempt of one logical call
type callInfo struct {
	method    string
	req       *Request
	requestID string
	start     time.Time
	count     int64
}

// attempt performs a single physical request under the per-attempt budget
func (c *client) attempt(ctx context.Context, call callInfo, number int) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.limiterError(ctx, err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeouts.ResponseTotal)
	defer cancel()

	httpReq, err := c.buildRequest(attemptCtx, call.method, call.req, call.requestID)
	if err != nil {
		return nil, err
	}
	c.logRequest(httpReq, call.req.Body, call.requestID, number)

	sent := time.Now()
	logger.IncrementHTTPCounter(ctx)
	defer func() { logger.AddHTTPElapsed(ctx, time.Since(sent).Nanoseconds()) }()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(attemptCtx, err)
	}

	resp, err := c.buildResponse(attemptCtx, httpReq, httpResp)
	if err != nil {
		return nil, err
	}
	resp.Stats = Stats{ElapsedTime: time.Since(call.start), CallCount: call.count, Attempts: number}
	c.logResponse(resp, call.requestID)

	if !IsSuccessStatus(resp.StatusCode) {
		return resp, statusError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// transportError maps a failed round trip or body read onto the client error taxonomy
func (c *client) transportError(attemptCtx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError("response not completed in time", c.config.Timeouts.ResponseTotal, err)
	}
	if isTimeout(err) {
		return NewTimeoutError("socket operation timed out", c.config.Timeouts.Read, err)
	}
	return NewNetworkError("request execution failed", err)
}

// limiterError reports a wait the deadline of ctx cannot cover as a timeout.
// Cancellation passes through unchanged.
func (c *client) limiterError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	var remaining time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		remaining = time.Until(deadline)
	}
	return NewTimeoutError("rate limit wait would exceed the call deadline", remaining, err)
}

// callName labels a logical call in retry events; the query string is dropped
func callName(method, rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return method + " " + rawURL
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.URL == "" {
		return NewValidationError("URL cannot be empty", "url")
	}
	return nil
}

// applyHeaders applies headers to the HTTP request
func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request, requestID string) {
	// Apply default headers first
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	// Apply request-specific headers (these override defaults)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	// Set Content-Type if not already set and body is present
	if httpReq.Header.Get("Content-Type") == "" && req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if httpReq.Header.Get(c.config.RequestIDHeader) == "" {
		httpReq.Header.Set(c.config.RequestIDHeader, requestID)
	}
}

// applyAuth applies authentication to the HTTP request
func (c *client) applyAuth(httpReq *nethttp.Request, req *Request) {
	// Request-specific auth takes precedence
	auth := req.Auth
	if auth == nil {
		auth = c.config.BasicAuth
	}

	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}
}

// buildRequest constructs an *http.Request, applies headers/auth, and runs request interceptors.
func (c *client) buildRequest(ctx context.Context, method string, req *Request, requestID string) (*nethttp.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, NewValidationError("failed to create HTTP request: "+err.Error(), "url")
	}

	c.applyHeaders(httpReq, req, requestID)
	c.applyAuth(httpReq, req)
	if c.config.EnableW3CTrace {
		injectTraceContext(ctx, httpReq)
	}

	if err := c.runRequestInterceptors(ctx, httpReq); err != nil {
		return nil, NewInterceptorError("request interceptor failed", "request", err)
	}
	return httpReq, nil
}

// buildResponse runs response interceptors and reads the body within the size limit.
func (c *client) buildResponse(ctx context.Context, httpReq *nethttp.Request, httpResp *nethttp.Response) (*Response, error) {
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		return nil, NewInterceptorError("response interceptor failed", "response", err)
	}

	limit := c.config.MaxResponseBytes
	if httpResp.ContentLength > limit {
		return nil, NewResponseTooLargeError(limit)
	}

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, limit+1))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	if int64(len(respBody)) > limit {
		return nil, NewResponseTooLargeError(limit)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// runRequestInterceptors executes all request interceptors
func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes all response interceptors
func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}
