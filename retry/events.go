package retry

import (
	"context"
	"time"
)

// Outcome records how a single physical attempt ended
type Outcome string

const (
	OutcomePending Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// CallAttempt describes one physical attempt of a logical call
type CallAttempt struct {
	Number    int
	StartedAt time.Time
	Outcome   Outcome
}

// AttemptStarted is emitted before every physical attempt
type AttemptStarted struct {
	Call    string
	Attempt CallAttempt
}

// RetryScheduled is emitted when a failed attempt will be retried after Delay
type RetryScheduled struct {
	Call        string
	Attempt     CallAttempt
	MaxAttempts int
	Tag         FaultTag
	Delay       time.Duration
	Cause       string
}

// Exhausted is emitted when a logical call ends in failure, either because the
// failure was not retryable or because MaxAttempts was reached.
type Exhausted struct {
	Call          string
	TotalAttempts int
	MaxAttempts   int
	Tag           FaultTag
	Cause         string
}

// Succeeded is emitted when an attempt completes without error
type Succeeded struct {
	Call    string
	Attempt CallAttempt
}

// CallCancelled is emitted when the caller's context ends the logical call
type CallCancelled struct {
	Call    string
	Attempt CallAttempt
	Cause   string
}

// Sink receives retry lifecycle events. Implementations must be safe for
// concurrent use and must record each event as a single unit.
type Sink interface {
	AttemptStarted(ctx context.Context, e AttemptStarted)
	RetryScheduled(ctx context.Context, e RetryScheduled)
	Exhausted(ctx context.Context, e Exhausted)
	Succeeded(ctx context.Context, e Succeeded)
	Cancelled(ctx context.Context, e CallCancelled)
}

type callNameKey struct{}

// WithCallName labels the logical call carried by ctx; the label is copied
// into every event emitted for it.
func WithCallName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callNameKey{}, name)
}

// CallNameFromContext returns the label set by WithCallName
func CallNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(callNameKey{}).(string)
	return name
}
