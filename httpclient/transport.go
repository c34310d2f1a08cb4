package httpclient

import (
	"context"
	"fmt"
	"net"
	nethttp "net/http"
	"time"
)

const (
	// DefaultConnectTimeout bounds TCP connection establishment
	DefaultConnectTimeout = 60 * time.Second
	// DefaultResponseTimeout bounds one physical attempt end to end
	DefaultResponseTimeout = 120 * time.Second
	// DefaultReadTimeout bounds each socket read
	DefaultReadTimeout = 120 * time.Second
	// DefaultWriteTimeout bounds each socket write
	DefaultWriteTimeout = 60 * time.Second

	defaultKeepAlivePeriod = 30 * time.Second
)

// TimeoutConfig holds the time budgets applied to every physical attempt
type TimeoutConfig struct {
	Connect       time.Duration
	ResponseTotal time.Duration
	Read          time.Duration
	Write         time.Duration
}

// DefaultTimeoutConfig returns the production time budgets
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Connect:       DefaultConnectTimeout,
		ResponseTotal: DefaultResponseTimeout,
		Read:          DefaultReadTimeout,
		Write:         DefaultWriteTimeout,
	}
}

// Validate checks that every budget is positive
func (t TimeoutConfig) Validate() error {
	budgets := []struct {
		name  string
		value time.Duration
	}{
		{"connect", t.Connect},
		{"response", t.ResponseTotal},
		{"read", t.Read},
		{"write", t.Write},
	}
	for _, b := range budgets {
		if b.value <= 0 {
			return fmt.Errorf("%s timeout must be positive, got %v", b.name, b.value)
		}
	}
	return nil
}

// TransportOptions tunes the TCP connections opened by the transport
type TransportOptions struct {
	// KeepAlive enables TCP keep-alive probes
	KeepAlive bool
	// NoDelay disables Nagle's algorithm
	NoDelay bool
}

// DefaultTransportOptions enables keep-alive and TCP_NODELAY
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{KeepAlive: true, NoDelay: true}
}

// NewTransport builds an *http.Transport enforcing the connect budget at dial
// time and the read/write budgets on every socket operation.
func NewTransport(timeouts TimeoutConfig, opts TransportOptions) *nethttp.Transport {
	dialer := &net.Dialer{
		Timeout:   timeouts.Connect,
		KeepAlive: defaultKeepAlivePeriod,
	}
	if !opts.KeepAlive {
		dialer.KeepAlive = -1
	}

	transport := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	transport.Proxy = nethttp.ProxyFromEnvironment
	transport.ResponseHeaderTimeout = timeouts.Read
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if tcp, ok := conn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(opts.NoDelay); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return &deadlineConn{Conn: conn, read: timeouts.Read, write: timeouts.Write}, nil
	}
	return transport
}

// deadlineConn arms a fresh deadline before every Read and Write
type deadlineConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if c.read > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if c.write > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.write)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}
