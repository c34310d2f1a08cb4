package httpclient

import (
	"fmt"
	"maps"
	nethttp "net/http"
	"slices"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/webclient/httpclient/internal/tracking"
	"github.com/gaborage/webclient/logger"
	"github.com/gaborage/webclient/retry"
)

const tracerName = "github.com/gaborage/webclient/httpclient"

// Builder provides a fluent interface for configuring the REST client
type Builder struct {
	config         *Config
	logger         logger.Logger
	sinks          []retry.Sink
	retryOptions   []retry.Option
	httpClient     *nethttp.Client
	transport      nethttp.RoundTripper
	otelTransport  bool
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metrics        bool
	limiter        *rate.Limiter
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: log,
	}
}

// WithConfig replaces the whole configuration with a copy of cfg; nil is ignored
func (b *Builder) WithConfig(cfg *Config) *Builder {
	if cfg == nil {
		return b
	}

	c := *cfg
	c.DefaultHeaders = maps.Clone(cfg.DefaultHeaders)
	if c.DefaultHeaders == nil {
		c.DefaultHeaders = make(map[string]string)
	}
	c.RequestInterceptors = slices.Clone(cfg.RequestInterceptors)
	c.ResponseInterceptors = slices.Clone(cfg.ResponseInterceptors)
	if cfg.BasicAuth != nil {
		auth := *cfg.BasicAuth
		c.BasicAuth = &auth
	}
	b.config = &c
	return b
}

// WithRetryConfig sets the retry policy
func (b *Builder) WithRetryConfig(cfg retry.Config) *Builder {
	b.config.Retry = cfg
	return b
}

// WithTimeouts sets the connect, response, read and write budgets
func (b *Builder) WithTimeouts(timeouts TimeoutConfig) *Builder {
	b.config.Timeouts = timeouts
	return b
}

// WithTimeout sets the budget of one physical attempt
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeouts.ResponseTotal = timeout
	return b
}

// WithTransportOptions sets TCP keep-alive and no-delay behaviour
func (b *Builder) WithTransportOptions(opts TransportOptions) *Builder {
	b.config.Transport = opts
	return b
}

// WithMaxResponseBytes caps the size of buffered response bodies
func (b *Builder) WithMaxResponseBytes(limit int64) *Builder {
	b.config.MaxResponseBytes = limit
	return b
}

// WithBasicAuth sets basic authentication credentials
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{
		Username: username,
		Password: password,
	}
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithLogPayloads enables debug logging of headers and body previews up to maxBytes
func (b *Builder) WithLogPayloads(enabled bool, maxBytes int) *Builder {
	b.config.LogPayloads = enabled
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// WithRequestIDHeader sets the header used to propagate request IDs
func (b *Builder) WithRequestIDHeader(header string) *Builder {
	if header != "" {
		b.config.RequestIDHeader = header
	}
	return b
}

// WithRequestIDGenerator sets the generator used when the context carries no request ID
func (b *Builder) WithRequestIDGenerator(gen func() string) *Builder {
	if gen != nil {
		b.config.NewRequestID = gen
	}
	return b
}

// WithW3CTrace enables traceparent/tracestate propagation
func (b *Builder) WithW3CTrace(enabled bool) *Builder {
	b.config.EnableW3CTrace = enabled
	return b
}

// WithSink adds a sink receiving retry lifecycle events. The log sink is always installed.
func (b *Builder) WithSink(sink retry.Sink) *Builder {
	if sink != nil {
		b.sinks = append(b.sinks, sink)
	}
	return b
}

// WithRetryOptions passes extra options, such as a clock or random source, to the executor
func (b *Builder) WithRetryOptions(opts ...retry.Option) *Builder {
	b.retryOptions = append(b.retryOptions, opts...)
	return b
}

// WithTracerProvider sets the provider used for per-call spans (default: global provider)
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithMetrics records retry metrics on mp (the global provider when nil)
func (b *Builder) WithMetrics(mp metric.MeterProvider) *Builder {
	b.metrics = true
	b.meterProvider = mp
	return b
}

// WithOTelTransport wraps the transport with otelhttp so every physical attempt gets a client span
func (b *Builder) WithOTelTransport() *Builder {
	b.otelTransport = true
	return b
}

// WithRateLimit throttles physical attempts to rps per second with the given burst
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return b
}

// WithHTTPClient uses the given *http.Client as is; transport options are ignored
func (b *Builder) WithHTTPClient(c *nethttp.Client) *Builder {
	b.httpClient = c
	return b
}

// WithTransport replaces the tuned transport with rt
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// Build creates the REST client with the configured options
func (b *Builder) Build() (Client, error) {
	if err := b.config.Timeouts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timeouts: %w", err)
	}
	if b.config.MaxResponseBytes <= 0 {
		b.config.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if b.config.RequestIDHeader == "" {
		b.config.RequestIDHeader = HeaderXRequestID
	}

	sinks := retry.MultiSink{retry.NewLogSink(b.logger), tracking.SpanSink{}}
	if b.metrics {
		sinks = append(sinks, tracking.NewMetricsSink(b.meterProvider))
	}
	sinks = append(sinks, b.sinks...)

	opts := append([]retry.Option{retry.WithSink(sinks)}, b.retryOptions...)
	executor, err := retry.NewExecutor(b.config.Retry, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	tp := b.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &client{
		httpClient:           b.buildHTTPClient(tp),
		logger:               b.logger,
		config:               b.config,
		executor:             executor,
		tracer:               tp.Tracer(tracerName),
		limiter:              b.limiter,
		requestInterceptors:  b.config.RequestInterceptors,
		responseInterceptors: b.config.ResponseInterceptors,
	}, nil
}

func (b *Builder) buildHTTPClient(tp trace.TracerProvider) *nethttp.Client {
	if b.httpClient != nil {
		return b.httpClient
	}

	rt := b.transport
	if rt == nil {
		rt = NewTransport(b.config.Timeouts, b.config.Transport)
	}
	if b.otelTransport {
		rt = otelhttp.NewTransport(rt, otelhttp.WithTracerProvider(tp))
	}
	return &nethttp.Client{Transport: rt}
}
