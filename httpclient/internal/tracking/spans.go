package tracking

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/webclient/retry"
)

// Span event names
const (
	EventAttemptStarted = "retry.attempt_started"
	EventRetryScheduled = "retry.scheduled"
	EventExhausted      = "retry.exhausted"
	EventSucceeded      = "retry.succeeded"
	EventCancelled      = "retry.cancelled"
)

// SpanSink adds retry lifecycle events to the span active in the call's context
type SpanSink struct{}

var _ retry.Sink = SpanSink{}

func (SpanSink) AttemptStarted(ctx context.Context, e retry.AttemptStarted) {
	trace.SpanFromContext(ctx).AddEvent(EventAttemptStarted, trace.WithAttributes(
		attribute.Int("retry.attempt", e.Attempt.Number),
	))
}

func (SpanSink) RetryScheduled(ctx context.Context, e retry.RetryScheduled) {
	trace.SpanFromContext(ctx).AddEvent(EventRetryScheduled, trace.WithAttributes(
		attribute.Int("retry.attempt", e.Attempt.Number),
		attribute.Int("retry.max_attempts", e.MaxAttempts),
		attribute.String(attrFaultTag, e.Tag.String()),
		attribute.Int64("retry.delay_ms", e.Delay.Milliseconds()),
		attribute.String("retry.cause", e.Cause),
	))
}

func (SpanSink) Exhausted(ctx context.Context, e retry.Exhausted) {
	trace.SpanFromContext(ctx).AddEvent(EventExhausted, trace.WithAttributes(
		attribute.Int("retry.total_attempts", e.TotalAttempts),
		attribute.String(attrFaultTag, e.Tag.String()),
		attribute.String("retry.cause", e.Cause),
	))
}

func (SpanSink) Succeeded(ctx context.Context, e retry.Succeeded) {
	trace.SpanFromContext(ctx).AddEvent(EventSucceeded, trace.WithAttributes(
		attribute.Int("retry.attempt", e.Attempt.Number),
	))
}

func (SpanSink) Cancelled(ctx context.Context, e retry.CallCancelled) {
	trace.SpanFromContext(ctx).AddEvent(EventCancelled, trace.WithAttributes(
		attribute.Int("retry.attempt", e.Attempt.Number),
		attribute.String("retry.cause", e.Cause),
	))
}
