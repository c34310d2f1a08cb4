package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultMetricsInterval is how often metrics are exported.
	DefaultMetricsInterval = time.Minute
)

// Config selects which signals are exported and where.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Trace   TraceConfig
	Metrics MetricsConfig

	// Output receives stdout exporter data (default: os.Stdout)
	Output io.Writer
}

// ExporterConfig describes an OTLP destination. Endpoint "stdout" prints instead.
type ExporterConfig struct {
	Endpoint string
	Protocol string
	Insecure bool
	Headers  map[string]string
}

// TraceConfig configures span export.
type TraceConfig struct {
	Enabled bool
	ExporterConfig
	// SampleRate is the fraction of new traces recorded
	SampleRate float64
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled bool
	ExporterConfig
	Interval time.Duration
}

// Enabled reports whether any signal is exported
func (c *Config) Enabled() bool {
	return c.Trace.Enabled || c.Metrics.Enabled
}

// ApplyDefaults fills unset endpoints, protocols and intervals
func (c *Config) ApplyDefaults() {
	c.Trace.ExporterConfig.applyDefaults()
	c.Metrics.ExporterConfig.applyDefaults()
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = DefaultMetricsInterval
	}
}

func (e *ExporterConfig) applyDefaults() {
	if e.Endpoint == "" {
		e.Endpoint = EndpointStdout
	}
	if e.Protocol == "" {
		e.Protocol = ProtocolHTTP
	}
}

// Validate checks the enabled signals
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Trace.Enabled {
		if c.Trace.SampleRate < 0 || c.Trace.SampleRate > 1 {
			return ErrInvalidSampleRate
		}
		if err := c.Trace.ExporterConfig.validate(); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
	}
	if c.Metrics.Enabled {
		if err := c.Metrics.ExporterConfig.validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	return nil
}

func (e *ExporterConfig) validate() error {
	if e.Endpoint == EndpointStdout {
		return nil
	}
	if e.Protocol != ProtocolHTTP && e.Protocol != ProtocolGRPC {
		return fmt.Errorf("protocol '%s': %w", e.Protocol, ErrInvalidProtocol)
	}
	if strings.Contains(e.Endpoint, "://") {
		return fmt.Errorf("endpoint '%s': %w", e.Endpoint, ErrInvalidEndpointFormat)
	}
	return nil
}
