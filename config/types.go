package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the overall application configuration structure.
// The koanf instance it was loaded from stays attached for ad-hoc lookups
// of keys the struct does not model.
type Config struct {
	App           AppConfig           `koanf:"app" json:"app" yaml:"app"`
	Log           LogConfig           `koanf:"log" json:"log" yaml:"log"`
	WebClient     WebClientConfig     `koanf:"webclient" json:"webclient" yaml:"webclient"`
	API           APIConfig           `koanf:"api" json:"api" yaml:"api"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Version string `koanf:"version" json:"version" yaml:"version"`
	Env     string `koanf:"env" json:"env" yaml:"env" validate:"oneof=development staging production"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string       `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Pretty bool         `koanf:"pretty" json:"pretty" yaml:"pretty"`
	Output OutputConfig `koanf:"output" json:"output" yaml:"output"`
}

// OutputConfig holds log output settings. An empty File logs to stdout.
type OutputConfig struct {
	File       string `koanf:"file" json:"file" yaml:"file"`
	MaxSizeMB  int    `koanf:"maxsizemb" json:"maxsizemb" yaml:"maxsizemb" validate:"gte=0"`
	MaxBackups int    `koanf:"maxbackups" json:"maxbackups" yaml:"maxbackups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"maxagedays" json:"maxagedays" yaml:"maxagedays" validate:"gte=0"`
	Compress   bool   `koanf:"compress" json:"compress" yaml:"compress"`
}

// WebClientConfig holds the outbound HTTP client settings.
type WebClientConfig struct {
	RetryPolicy RetryPolicyConfig `koanf:"retry" json:"retry" yaml:"retry"`
	Timeout     TimeoutSettings   `koanf:"timeout" json:"timeout" yaml:"timeout"`
	// MaxInMemoryResponseSizeMB caps buffered response bodies
	MaxInMemoryResponseSizeMB int             `koanf:"maxinmemoryresponsesizemb" json:"maxinmemoryresponsesizemb" yaml:"maxinmemoryresponsesizemb" validate:"gte=1"`
	KeepAlive                 bool            `koanf:"keepalive" json:"keepalive" yaml:"keepalive"`
	NoDelay                   bool            `koanf:"nodelay" json:"nodelay" yaml:"nodelay"`
	RateLimit                 RateLimitConfig `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`
	LogPayloads               bool            `koanf:"logpayloads" json:"logpayloads" yaml:"logpayloads"`
	PayloadPreviewBytes       int             `koanf:"payloadpreviewbytes" json:"payloadpreviewbytes" yaml:"payloadpreviewbytes" validate:"gte=0"`
}

// RetryPolicyConfig holds the retry policy of the client.
type RetryPolicyConfig struct {
	MaxAttempts    int           `koanf:"maxattempts" json:"maxattempts" yaml:"maxattempts" validate:"gte=1,lte=100"`
	InitialBackoff time.Duration `koanf:"initialbackoff" json:"initialbackoff" yaml:"initialbackoff" validate:"gte=1ms"`
	MaxBackoff     time.Duration `koanf:"maxbackoff" json:"maxbackoff" yaml:"maxbackoff" validate:"gte=1ms"`
	Jitter         float64       `koanf:"jitter" json:"jitter" yaml:"jitter" validate:"gte=0,lte=1"`
}

// TimeoutSettings holds the per-attempt time budgets. Durations need a unit
// ("60s", "500ms"); a bare number would be nanoseconds and is rejected.
type TimeoutSettings struct {
	Connect  time.Duration `koanf:"connect" json:"connect" yaml:"connect" validate:"gte=1ms"`
	Response time.Duration `koanf:"response" json:"response" yaml:"response" validate:"gte=1ms"`
	Read     time.Duration `koanf:"read" json:"read" yaml:"read" validate:"gte=1ms"`
	Write    time.Duration `koanf:"write" json:"write" yaml:"write" validate:"gte=1ms"`
}

// RateLimitConfig throttles outbound attempts. A zero RPS disables throttling.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" json:"rps" yaml:"rps" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// APIConfig holds the base URLs of upstream APIs.
type APIConfig struct {
	JSONPlaceholder UpstreamConfig `koanf:"jsonplaceholder" json:"jsonplaceholder" yaml:"jsonplaceholder"`
	Example         UpstreamConfig `koanf:"example" json:"example" yaml:"example"`
}

// UpstreamConfig describes one upstream API.
type UpstreamConfig struct {
	BaseURL string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,url"`
}

// ObservabilityConfig selects where client metrics and spans are exported.
type ObservabilityConfig struct {
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `koanf:"tracing" json:"tracing" yaml:"tracing"`
}

// ExporterConfig names an OTLP collector, or "stdout" for local development.
type ExporterConfig struct {
	Endpoint string            `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Protocol string            `koanf:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=http grpc"`
	Insecure bool              `koanf:"insecure" json:"insecure" yaml:"insecure"`
	Headers  map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool           `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Exporter ExporterConfig `koanf:"exporter" json:"exporter" yaml:"exporter"`
	Interval time.Duration  `koanf:"interval" json:"interval" yaml:"interval" validate:"gte=0"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled    bool           `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Exporter   ExporterConfig `koanf:"exporter" json:"exporter" yaml:"exporter"`
	SampleRate float64        `koanf:"samplerate" json:"samplerate" yaml:"samplerate" validate:"gte=0,lte=1"`
}
