// Package tracking records retry lifecycle events as OpenTelemetry metrics
// and span events.
package tracking

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gaborage/webclient/retry"
)

const (
	// Meter name for outbound HTTP client instrumentation
	meterName = "github.com/gaborage/webclient/httpclient"

	metricAttempts     = "http.client.attempts"      // Counter
	metricRetries      = "http.client.retries"       // Counter
	metricExhausted    = "http.client.exhausted"     // Counter
	metricCancelled    = "http.client.cancelled"     // Counter
	metricBackoffDelay = "http.client.backoff.delay" // Histogram in seconds

	attrHTTPRequestMethod = "http.request.method"
	attrFaultTag          = "retry.fault_tag"
)

// Backoff delays range from fractions of a second up to the configured cap
var backoffBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30, 60}

// MetricsSink counts attempts, retries and terminal failures and records
// scheduled backoff delays.
type MetricsSink struct {
	attempts  metric.Int64Counter
	retries   metric.Int64Counter
	exhausted metric.Int64Counter
	cancelled metric.Int64Counter
	backoff   metric.Float64Histogram
}

var _ retry.Sink = (*MetricsSink)(nil)

// logMetricError logs a metric initialization error to stderr.
// Metrics failures must not break the client.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize HTTP client metric %s: %v\n", metricName, err)
	}
}

// NewMetricsSink creates instruments on mp, or on the global provider when mp is nil
func NewMetricsSink(mp metric.MeterProvider) *MetricsSink {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	s := &MetricsSink{}

	var err error
	s.attempts, err = meter.Int64Counter(metricAttempts,
		metric.WithDescription("Physical attempts started by the HTTP client"),
		metric.WithUnit("{attempt}"),
	)
	logMetricError(metricAttempts, err)

	s.retries, err = meter.Int64Counter(metricRetries,
		metric.WithDescription("Failed attempts scheduled for retry"),
		metric.WithUnit("{retry}"),
	)
	logMetricError(metricRetries, err)

	s.exhausted, err = meter.Int64Counter(metricExhausted,
		metric.WithDescription("Logical calls that ended in failure"),
		metric.WithUnit("{call}"),
	)
	logMetricError(metricExhausted, err)

	s.cancelled, err = meter.Int64Counter(metricCancelled,
		metric.WithDescription("Logical calls ended by the caller's context"),
		metric.WithUnit("{call}"),
	)
	logMetricError(metricCancelled, err)

	s.backoff, err = meter.Float64Histogram(metricBackoffDelay,
		metric.WithDescription("Backoff delay scheduled before a retry"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(backoffBuckets...),
	)
	logMetricError(metricBackoffDelay, err)

	return s
}

func (s *MetricsSink) AttemptStarted(ctx context.Context, e retry.AttemptStarted) {
	if s.attempts != nil {
		s.attempts.Add(ctx, 1, metric.WithAttributes(methodAttr(e.Call)))
	}
}

func (s *MetricsSink) RetryScheduled(ctx context.Context, e retry.RetryScheduled) {
	attrs := metric.WithAttributes(methodAttr(e.Call), attribute.String(attrFaultTag, e.Tag.String()))
	if s.retries != nil {
		s.retries.Add(ctx, 1, attrs)
	}
	if s.backoff != nil {
		s.backoff.Record(ctx, e.Delay.Seconds(), attrs)
	}
}

func (s *MetricsSink) Exhausted(ctx context.Context, e retry.Exhausted) {
	if s.exhausted != nil {
		s.exhausted.Add(ctx, 1, metric.WithAttributes(methodAttr(e.Call), attribute.String(attrFaultTag, e.Tag.String())))
	}
}

func (s *MetricsSink) Succeeded(context.Context, retry.Succeeded) {}

func (s *MetricsSink) Cancelled(ctx context.Context, e retry.CallCancelled) {
	if s.cancelled != nil {
		s.cancelled.Add(ctx, 1, metric.WithAttributes(methodAttr(e.Call)))
	}
}

// methodAttr extracts the HTTP method from a call name such as "GET https://host/path".
// The full name is not used as an attribute to keep cardinality bounded.
func methodAttr(call string) attribute.KeyValue {
	method, _, found := strings.Cut(call, " ")
	if !found || method == "" {
		method = "_OTHER"
	}
	return attribute.String(attrHTTPRequestMethod, method)
}
