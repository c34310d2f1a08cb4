package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/webclient/httpclient"
	"github.com/gaborage/webclient/observability"
	"github.com/gaborage/webclient/retry"
)

func TestWebClientConversions(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
webclient:
  retry:
    maxattempts: 4
    initialbackoff: 100ms
    maxbackoff: 1s
    jitter: 0.2
  timeout:
    connect: 1s
    response: 2s
    read: 3s
    write: 4s
  maxinmemoryresponsesizemb: 3
  nodelay: false
  logpayloads: true
  payloadpreviewbytes: 256
`))
	require.NoError(t, err)
	wc := cfg.WebClient

	assert.Equal(t, retry.Config{
		MaxAttempts:    4,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFraction: 0.2,
	}, wc.Retry())
	assert.NoError(t, wc.Retry().Validate())

	assert.Equal(t, httpclient.TimeoutConfig{
		Connect:       time.Second,
		ResponseTotal: 2 * time.Second,
		Read:          3 * time.Second,
		Write:         4 * time.Second,
	}, wc.Timeouts())
	assert.Equal(t, int64(3<<20), wc.MaxResponseBytes())
	assert.Equal(t, httpclient.TransportOptions{KeepAlive: true, NoDelay: false}, wc.TransportOptions())

	client := wc.ClientConfig()
	assert.Equal(t, wc.Retry(), client.Retry)
	assert.Equal(t, wc.Timeouts(), client.Timeouts)
	assert.Equal(t, int64(3<<20), client.MaxResponseBytes)
	assert.True(t, client.LogPayloads)
	assert.Equal(t, 256, client.MaxPayloadLogBytes)
	assert.Equal(t, httpclient.HeaderXRequestID, client.RequestIDHeader)
}

func TestDefaultsMatchClientDefaults(t *testing.T) {
	wc := validConfig(t).WebClient

	assert.Equal(t, retry.DefaultConfig(), wc.Retry())
	assert.Equal(t, httpclient.DefaultTimeoutConfig(), wc.Timeouts())
	assert.Equal(t, httpclient.DefaultMaxResponseBytes, wc.MaxResponseBytes())
}

func TestLoggerOptions(t *testing.T) {
	t.Run("stdout by default", func(t *testing.T) {
		opts := LogConfig{Level: "warn", Pretty: true}.LoggerOptions()
		assert.Equal(t, "warn", opts.Level)
		assert.True(t, opts.Pretty)
		assert.Nil(t, opts.File)
	})

	t.Run("rotating file", func(t *testing.T) {
		opts := LogConfig{
			Level:  "info",
			Output: OutputConfig{File: "/var/log/webclient.log", MaxSizeMB: 10, MaxBackups: 2, MaxAgeDays: 7, Compress: true},
		}.LoggerOptions()
		require.NotNil(t, opts.File)
		assert.Equal(t, "/var/log/webclient.log", opts.File.Path)
		assert.Equal(t, 10, opts.File.MaxSizeMB)
		assert.Equal(t, 2, opts.File.MaxBackups)
		assert.Equal(t, 7, opts.File.MaxAgeDays)
		assert.True(t, opts.File.Compress)
	})
}

func TestProviderConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
app:
  name: orders
  version: 1.4.2
  env: staging
observability:
  tracing:
    enabled: true
    samplerate: 0.25
    exporter:
      endpoint: collector:4317
      protocol: grpc
      insecure: true
      headers:
        x-tenant: acme
`))
	require.NoError(t, err)

	pc := cfg.ProviderConfig()
	assert.Equal(t, "orders", pc.ServiceName)
	assert.Equal(t, "1.4.2", pc.ServiceVersion)
	assert.Equal(t, EnvStaging, pc.Environment)

	assert.True(t, pc.Trace.Enabled)
	assert.InDelta(t, 0.25, pc.Trace.SampleRate, 1e-9)
	assert.Equal(t, "collector:4317", pc.Trace.Endpoint)
	assert.Equal(t, observability.ProtocolGRPC, pc.Trace.Protocol)
	assert.True(t, pc.Trace.Insecure)
	assert.Equal(t, map[string]string{"x-tenant": "acme"}, pc.Trace.Headers)

	assert.False(t, pc.Metrics.Enabled)
	assert.Equal(t, observability.EndpointStdout, pc.Metrics.Endpoint)
	assert.Equal(t, time.Minute, pc.Metrics.Interval)
	require.NoError(t, pc.Validate())
}

func TestObservabilityProtocolValidated(t *testing.T) {
	_, err := LoadFromBytes([]byte(`
observability:
  metrics:
    exporter:
      protocol: thrift
`))
	assert.ErrorContains(t, err, "observability.metrics.exporter.protocol")
}
