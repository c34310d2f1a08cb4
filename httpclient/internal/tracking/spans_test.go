package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	obtest "github.com/gaborage/webclient/observability/testing"
	"github.com/gaborage/webclient/retry"
)

func TestSpanSinkAddsEventsToActiveSpan(t *testing.T) {
	tp := obtest.NewTestTraceProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "HTTP GET")
	sink := SpanSink{}

	sink.AttemptStarted(ctx, retry.AttemptStarted{Attempt: retry.CallAttempt{Number: 1}})
	sink.RetryScheduled(ctx, retry.RetryScheduled{
		Attempt:     retry.CallAttempt{Number: 1},
		MaxAttempts: 3,
		Tag:         retry.RateLimited,
		Delay:       1500 * time.Millisecond,
		Cause:       "HttpError[429]: Too Many Requests",
	})
	sink.AttemptStarted(ctx, retry.AttemptStarted{Attempt: retry.CallAttempt{Number: 2}})
	sink.Succeeded(ctx, retry.Succeeded{Attempt: retry.CallAttempt{Number: 2}})
	span.End()

	stub := obtest.NewSpanCollector(t, tp.Exporter).AssertCount(1).First()
	assert.Equal(t, []string{EventAttemptStarted, EventRetryScheduled, EventAttemptStarted, EventSucceeded}, obtest.SpanEventNames(&stub))

	retryEvent := stub.Events[1]
	attrs := map[string]any{}
	for _, kv := range retryEvent.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(1500), attrs["retry.delay_ms"])
	assert.Equal(t, "rate_limited", attrs[attrFaultTag])
	assert.Equal(t, int64(3), attrs["retry.max_attempts"])
}

func TestSpanSinkTerminalEvents(t *testing.T) {
	tp := obtest.NewTestTraceProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "HTTP POST")
	SpanSink{}.Exhausted(ctx, retry.Exhausted{TotalAttempts: 3, Tag: retry.TransientServer})
	SpanSink{}.Cancelled(ctx, retry.CallCancelled{Cause: "context canceled"})
	span.End()

	stub := obtest.NewSpanCollector(t, tp.Exporter).First()
	require.Len(t, stub.Events, 2)
	assert.Equal(t, EventExhausted, stub.Events[0].Name)
	assert.Equal(t, EventCancelled, stub.Events[1].Name)
}

func TestSpanSinkWithoutSpanIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		SpanSink{}.AttemptStarted(context.Background(), retry.AttemptStarted{})
		SpanSink{}.Exhausted(context.Background(), retry.Exhausted{})
	})
}
