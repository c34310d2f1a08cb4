package httpclient

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/webclient/retry"
)

func TestDefaultTimeoutConfig(t *testing.T) {
	timeouts := DefaultTimeoutConfig()

	assert.Equal(t, 60*time.Second, timeouts.Connect)
	assert.Equal(t, 120*time.Second, timeouts.ResponseTotal)
	assert.Equal(t, 120*time.Second, timeouts.Read)
	assert.Equal(t, 60*time.Second, timeouts.Write)
	assert.NoError(t, timeouts.Validate())
}

func TestTimeoutConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TimeoutConfig)
		wantErr string
	}{
		{name: "zero connect", mutate: func(c *TimeoutConfig) { c.Connect = 0 }, wantErr: "connect timeout"},
		{name: "negative response", mutate: func(c *TimeoutConfig) { c.ResponseTotal = -time.Second }, wantErr: "response timeout"},
		{name: "zero read", mutate: func(c *TimeoutConfig) { c.Read = 0 }, wantErr: "read timeout"},
		{name: "zero write", mutate: func(c *TimeoutConfig) { c.Write = 0 }, wantErr: "write timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeouts := DefaultTimeoutConfig()
			tt.mutate(&timeouts)
			assert.ErrorContains(t, timeouts.Validate(), tt.wantErr)
		})
	}
}

func TestNewTransport(t *testing.T) {
	timeouts := TimeoutConfig{Connect: time.Second, ResponseTotal: 2 * time.Second, Read: 3 * time.Second, Write: 4 * time.Second}
	transport := NewTransport(timeouts, DefaultTransportOptions())

	assert.Equal(t, 3*time.Second, transport.ResponseHeaderTimeout)
	assert.NotNil(t, transport.DialContext)
	assert.NotNil(t, transport.Proxy)
}

func TestTransportWrapsDialedConnections(t *testing.T) {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: unable to bind IPv4 listener: %v", err)
	}
	defer listener.Close()
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(200 * time.Millisecond)
		}
	}()

	timeouts := DefaultTimeoutConfig()
	timeouts.Read = 30 * time.Millisecond
	transport := NewTransport(timeouts, TransportOptions{KeepAlive: false, NoDelay: true})

	conn, err := transport.DialContext(context.Background(), "tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	dc, ok := conn.(*deadlineConn)
	require.True(t, ok)
	assert.Equal(t, 30*time.Millisecond, dc.read)

	_, err = conn.Read(make([]byte, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.Equal(t, retry.Timeout, retry.Classify(err))
}

func TestDeadlineConnWriteTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn := &deadlineConn{Conn: client, read: time.Second, write: 20 * time.Millisecond}
	defer conn.Close()

	// nobody reads the other end, so the write blocks until its deadline
	_, err := conn.Write([]byte("stalled"))
	require.Error(t, err)
	assert.True(t, isTimeout(err))
}

func TestDeadlineConnResetsDeadlinePerRead(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn := &deadlineConn{Conn: client, read: 100 * time.Millisecond}
	defer conn.Close()

	go func() {
		for range 3 {
			time.Sleep(60 * time.Millisecond)
			_, _ = server.Write([]byte("x"))
		}
	}()

	// total time exceeds the read budget; each individual read does not
	buf := make([]byte, 1)
	for range 3 {
		_, err := conn.Read(buf)
		require.NoError(t, err)
	}
}
