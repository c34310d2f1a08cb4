package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gaborage/webclient/retry"
)

// Test constants to avoid string duplication
const (
	testConnectionFailed = "connection failed"
)

// TestErrorTypeFormatting tests the Error() method behavior per error type
func TestErrorTypeFormatting(t *testing.T) {
	tests := []struct {
		name     string
		error    ClientError
		errType  ErrorType
		contains []string
	}{
		{
			name:     "network error without wrapped error",
			error:    NewNetworkError(testConnectionFailed, nil),
			errType:  NetworkError,
			contains: []string{"network error", testConnectionFailed},
		},
		{
			name:     "network error with wrapped error",
			error:    NewNetworkError(testConnectionFailed, errors.New("underlying issue")),
			errType:  NetworkError,
			contains: []string{"network error", testConnectionFailed, "underlying issue"},
		},
		{
			name:     "timeout error",
			error:    NewTimeoutError("request timeout", 30*time.Second, context.DeadlineExceeded),
			errType:  TimeoutError,
			contains: []string{"timeout error", "request timeout", "30s"},
		},
		{
			name:     "http error",
			error:    NewHTTPError("Bad Request", 400, []byte("invalid input")),
			errType:  HTTPError,
			contains: []string{"HTTP error", "Bad Request", "400"},
		},
		{
			name:     "validation error with field",
			error:    NewValidationError("URL cannot be empty", "url"),
			errType:  ValidationError,
			contains: []string{"validation error", "URL cannot be empty", "url"},
		},
		{
			name:     "interceptor error",
			error:    NewInterceptorError("processing failed", "request", errors.New("parsing error")),
			errType:  InterceptorError,
			contains: []string{"interceptor error", "processing failed", "request", "parsing error"},
		},
		{
			name:     "response too large",
			error:    NewResponseTooLargeError(2048),
			errType:  ResponseTooLargeError,
			contains: []string{"response too large", "2048"},
		},
		{
			name:     "decode error",
			error:    NewDecodeError("jsonplaceholder.Post", errors.New("unexpected end")),
			errType:  DecodeError,
			contains: []string{"decode error", "jsonplaceholder.Post", "unexpected end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.error.Type())
			for _, s := range tt.contains {
				assert.Contains(t, tt.error.Error(), s)
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	httpErr := fmt.Errorf("load: %w", NewHTTPError("Not Found", 404, []byte("missing")))

	assert.True(t, IsErrorType(httpErr, HTTPError))
	assert.False(t, IsErrorType(httpErr, NetworkError))
	assert.False(t, IsErrorType(nil, HTTPError))
	assert.False(t, IsErrorType(errors.New("plain"), HTTPError))

	assert.True(t, IsHTTPStatusError(httpErr, 404))
	assert.False(t, IsHTTPStatusError(httpErr, 500))
	assert.Equal(t, 404, StatusCodeOf(httpErr))
	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))

	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(204))
	assert.False(t, IsSuccessStatus(301))
	assert.False(t, IsSuccessStatus(500))
}

func TestStatusErrorUsesStatusText(t *testing.T) {
	assert.Contains(t, statusError(503, nil).Error(), "Service Unavailable")
	assert.Contains(t, statusError(599, nil).Error(), "unexpected status")
}

// TestClientErrorsClassify checks how each client error maps onto retry fault tags
func TestClientErrorsClassify(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}}
	reset := &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}}

	tests := []struct {
		name     string
		err      error
		expected retry.FaultTag
	}{
		{name: "server error", err: statusError(503, nil), expected: retry.TransientServer},
		{name: "rate limited", err: statusError(429, nil), expected: retry.RateLimited},
		{name: "client error", err: statusError(400, nil), expected: retry.Permanent},
		{name: "connection refused", err: NewNetworkError("request execution failed", refused), expected: retry.TransientNetwork},
		{name: "connection reset", err: NewNetworkError("request execution failed", reset), expected: retry.TransientNetwork},
		{name: "response timeout", err: NewTimeoutError("response not completed in time", time.Second, context.DeadlineExceeded), expected: retry.Timeout},
		{name: "validation", err: NewValidationError("URL cannot be empty", "url"), expected: retry.Permanent},
		{name: "interceptor", err: NewInterceptorError("failed", "request", errors.New("no token")), expected: retry.Permanent},
		{name: "too large", err: NewResponseTooLargeError(10), expected: retry.Permanent},
		{name: "decode", err: NewDecodeError("T", errors.New("bad json")), expected: retry.Permanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, retry.Classify(tt.err))
		})
	}
}
