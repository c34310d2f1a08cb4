package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

// statusErr is a failure carrying an HTTP status code
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string   { return e.msg }
func (e *statusErr) StatusCode() int { return e.code }

// opaqueWrap hides the wrapped message so only a chain walk can find it
type opaqueWrap struct {
	err error
}

func (e *opaqueWrap) Error() string { return "wrapped failure" }
func (e *opaqueWrap) Unwrap() error { return e.err }

type netFault struct {
	msg string
}

func (e *netFault) Error() string      { return e.msg }
func (e *netFault) NetworkFault() bool { return true }

func wrapN(err error, n int) error {
	for range n {
		err = &opaqueWrap{err: err}
	}
	return err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FaultTag
	}{
		{name: "nil error", err: nil, expected: Permanent},
		{name: "500 server error", err: &statusErr{code: 500, msg: "internal"}, expected: TransientServer},
		{name: "503 server error", err: &statusErr{code: 503, msg: "unavailable"}, expected: TransientServer},
		{name: "429 rate limited", err: &statusErr{code: 429, msg: "slow down"}, expected: RateLimited},
		{name: "400 bad request", err: &statusErr{code: 400, msg: "bad request"}, expected: Permanent},
		{name: "404 not found", err: &statusErr{code: 404, msg: "not found"}, expected: Permanent},
		{name: "wrapped 502", err: fmt.Errorf("call failed: %w", &statusErr{code: 502, msg: "bad gateway"}), expected: TransientServer},
		{
			name:     "server status wins over reset message",
			err:      &statusErr{code: 503, msg: "connection reset by peer"},
			expected: TransientServer,
		},
		{name: "context canceled", err: fmt.Errorf("do: %w", context.Canceled), expected: Cancelled},
		{name: "direct ECONNRESET", err: syscall.ECONNRESET, expected: TransientNetwork},
		{name: "reset message", err: errors.New("read tcp: Connection reset by peer"), expected: TransientNetwork},
		{name: "native reset signature", err: errors.New("recvAddress(..) failed: unexpected"), expected: TransientNetwork},
		{name: "joined errors with reset", err: errors.Join(errors.New("first"), syscall.ECONNRESET), expected: TransientNetwork},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: Timeout},
		{name: "os deadline exceeded", err: fmt.Errorf("read: %w", os.ErrDeadlineExceeded), expected: Timeout},
		{
			name:     "url error wrapping deadline",
			err:      &url.Error{Op: "Get", URL: "http://example.com", Err: context.DeadlineExceeded},
			expected: Timeout,
		},
		{
			name:     "dial refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			expected: TransientNetwork,
		},
		{
			name:     "dns not found",
			err:      &net.DNSError{Err: "no such host", Name: "api.invalid", IsNotFound: true},
			expected: TransientNetwork,
		},
		{
			name:     "network fault mentioning timeout",
			err:      &netFault{msg: "handshake timeout while connecting"},
			expected: TransientNetwork,
		},
		{
			name:     "network fault no route",
			err:      &netFault{msg: "dial tcp 10.0.0.1:443: connect: No route to host"},
			expected: TransientNetwork,
		},
		{name: "application error mentioning refused", err: errors.New("connection refused"), expected: Permanent},
		{name: "validation error", err: errors.New("invalid payload"), expected: Permanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestClassifyWalksCauseChain(t *testing.T) {
	t.Run("reset nested three levels deep", func(t *testing.T) {
		inner := &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}
		err := wrapN(inner, 3)

		assert.Equal(t, "wrapped failure", err.Error())
		assert.Equal(t, TransientNetwork, Classify(err))
	})

	t.Run("reset message nested three levels deep", func(t *testing.T) {
		err := wrapN(errors.New("recvAddress(..) failed: Connection reset by peer"), 3)
		assert.Equal(t, TransientNetwork, Classify(err))
	})

	t.Run("timeout nested behind opaque wrappers", func(t *testing.T) {
		err := wrapN(context.DeadlineExceeded, 5)
		assert.Equal(t, Timeout, Classify(err))
	})

	t.Run("status nested behind opaque wrappers", func(t *testing.T) {
		err := wrapN(&statusErr{code: 429, msg: "too many"}, 4)
		assert.Equal(t, RateLimited, Classify(err))
	})

	t.Run("walk stops at max depth", func(t *testing.T) {
		err := wrapN(syscall.ECONNRESET, MaxCauseDepth+5)
		assert.Equal(t, Permanent, Classify(err))
	})
}

func TestClassifyIsDeterministic(t *testing.T) {
	inputs := []error{
		nil,
		&statusErr{code: 503},
		syscall.ECONNRESET,
		context.DeadlineExceeded,
		errors.New("boom"),
		wrapN(syscall.ECONNRESET, 3),
	}
	for _, err := range inputs {
		first := Classify(err)
		for range 10 {
			assert.Equal(t, first, Classify(err))
		}
	}
}

func TestFaultTagRetryable(t *testing.T) {
	tests := []struct {
		tag      FaultTag
		expected bool
	}{
		{TransientNetwork, true},
		{TransientServer, true},
		{RateLimited, true},
		{Timeout, true},
		{Permanent, false},
		{Cancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tag.Retryable())
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "", Summary(nil))
	assert.Equal(t, "ServerError[503]: unavailable", Summary(&statusErr{code: 503, msg: "unavailable"}))
	assert.Equal(t, "HttpError[404]: missing", Summary(&statusErr{code: 404, msg: "missing"}))
	assert.Equal(t, "NetworkError: dial: connection refused",
		Summary(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}))
	assert.Equal(t, "plain", Summary(errors.New("plain")))
}
