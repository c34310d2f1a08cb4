package config

import (
	"github.com/gaborage/webclient/httpclient"
	"github.com/gaborage/webclient/logger"
	"github.com/gaborage/webclient/observability"
	"github.com/gaborage/webclient/retry"
)

const bytesPerMB = 1 << 20

// Retry returns the retry policy for the executor
func (w WebClientConfig) Retry() retry.Config {
	return retry.Config{
		MaxAttempts:    w.RetryPolicy.MaxAttempts,
		InitialBackoff: w.RetryPolicy.InitialBackoff,
		MaxBackoff:     w.RetryPolicy.MaxBackoff,
		JitterFraction: w.RetryPolicy.Jitter,
	}
}

// Timeouts returns the per-attempt time budgets
func (w WebClientConfig) Timeouts() httpclient.TimeoutConfig {
	return httpclient.TimeoutConfig{
		Connect:       w.Timeout.Connect,
		ResponseTotal: w.Timeout.Response,
		Read:          w.Timeout.Read,
		Write:         w.Timeout.Write,
	}
}

// MaxResponseBytes returns the in-memory response cap in bytes
func (w WebClientConfig) MaxResponseBytes() int64 {
	return int64(w.MaxInMemoryResponseSizeMB) * bytesPerMB
}

func (w WebClientConfig) TransportOptions() httpclient.TransportOptions {
	return httpclient.TransportOptions{KeepAlive: w.KeepAlive, NoDelay: w.NoDelay}
}

// ClientConfig assembles a full client configuration on top of the client defaults
func (w WebClientConfig) ClientConfig() *httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Retry = w.Retry()
	cfg.Timeouts = w.Timeouts()
	cfg.Transport = w.TransportOptions()
	cfg.MaxResponseBytes = w.MaxResponseBytes()
	cfg.LogPayloads = w.LogPayloads
	if w.PayloadPreviewBytes > 0 {
		cfg.MaxPayloadLogBytes = w.PayloadPreviewBytes
	}
	return cfg
}

// LoggerOptions maps the log section onto logger options
func (l LogConfig) LoggerOptions() logger.Options {
	opts := logger.Options{Level: l.Level, Pretty: l.Pretty}
	if l.Output.File != "" {
		opts.File = &logger.FileOptions{
			Path:       l.Output.File,
			MaxSizeMB:  l.Output.MaxSizeMB,
			MaxBackups: l.Output.MaxBackups,
			MaxAgeDays: l.Output.MaxAgeDays,
			Compress:   l.Output.Compress,
		}
	}
	return opts
}

// ProviderConfig returns the exporter settings for observability.NewProvider.
// Resource attributes come from the app section.
func (c *Config) ProviderConfig() observability.Config {
	o := c.Observability
	return observability.Config{
		ServiceName:    c.App.Name,
		ServiceVersion: c.App.Version,
		Environment:    c.App.Env,
		Trace: observability.TraceConfig{
			Enabled:        o.Tracing.Enabled,
			ExporterConfig: o.Tracing.Exporter.toProvider(),
			SampleRate:     o.Tracing.SampleRate,
		},
		Metrics: observability.MetricsConfig{
			Enabled:        o.Metrics.Enabled,
			ExporterConfig: o.Metrics.Exporter.toProvider(),
			Interval:       o.Metrics.Interval,
		},
	}
}

func (e ExporterConfig) toProvider() observability.ExporterConfig {
	return observability.ExporterConfig{
		Endpoint: e.Endpoint,
		Protocol: e.Protocol,
		Insecure: e.Insecure,
		Headers:  e.Headers,
	}
}
