package retry

import (
	"context"
	"errors"
	"time"
)

// Call performs one physical attempt of a logical call
type Call[T any] func(ctx context.Context, attempt CallAttempt) (T, error)

// Executor runs logical calls under a fixed retry policy.
// It holds no per-call state and is safe for concurrent use.
type Executor struct {
	cfg      Config
	backoff  *Backoff
	classify Classifier
	sink     Sink
	clock    Clock
	rnd      RandomSource
}

// Option configures an Executor
type Option func(*Executor)

// WithSink sets the sink receiving lifecycle events
func WithSink(s Sink) Option {
	return func(e *Executor) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithClassifier replaces Classify as the fault classifier
func WithClassifier(c Classifier) Option {
	return func(e *Executor) {
		if c != nil {
			e.classify = c
		}
	}
}

// WithRandom injects the random source used for jitter
func WithRandom(r RandomSource) Option {
	return func(e *Executor) {
		e.rnd = r
	}
}

// WithClock injects the clock used for backoff waits
func WithClock(c Clock) Option {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewExecutor validates cfg and creates an Executor
func NewExecutor(cfg Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		cfg:      cfg,
		classify: Classify,
		sink:     NopSink{},
		clock:    RealClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.backoff = NewBackoff(cfg, e.rnd)
	return e, nil
}

// Config returns the policy the executor was built with
func (e *Executor) Config() Config {
	return e.cfg
}

// Backoff returns the delay policy shared by all calls
func (e *Executor) Backoff() *Backoff {
	return e.backoff
}

// Do runs call until it succeeds, fails permanently, exhausts the attempt budget
// or ctx ends. Attempts are strictly sequential. Failures are returned as a
// *FinalFailure wrapping the last observed error.
func Do[T any](ctx context.Context, ex *Executor, call Call[T]) (T, error) {
	var zero T
	name := CallNameFromContext(ctx)
	maxAttempts := ex.cfg.MaxAttempts

	for n := 1; ; n++ {
		attempt := CallAttempt{Number: n, StartedAt: ex.clock.Now()}

		if err := ctx.Err(); err != nil {
			return zero, ex.cancelled(ctx, name, CallAttempt{Number: n - 1}, err)
		}

		ex.sink.AttemptStarted(ctx, AttemptStarted{Call: name, Attempt: attempt})

		result, err := call(ctx, attempt)
		if err == nil {
			attempt.Outcome = OutcomeSuccess
			ex.sink.Succeeded(ctx, Succeeded{Call: name, Attempt: attempt})
			return result, nil
		}
		attempt.Outcome = OutcomeFailure

		if ctx.Err() != nil {
			return zero, ex.cancelled(ctx, name, attempt, err)
		}

		tag := ex.classify(err)
		if !tag.Retryable() || n >= maxAttempts {
			ex.sink.Exhausted(ctx, Exhausted{
				Call:          name,
				TotalAttempts: n,
				MaxAttempts:   maxAttempts,
				Tag:           tag,
				Cause:         Summary(err),
			})
			return zero, &FinalFailure{Tag: tag, Attempts: n, Err: err}
		}

		delay := ex.backoff.NextDelay(n)
		ex.sink.RetryScheduled(ctx, RetryScheduled{
			Call:        name,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
			Tag:         tag,
			Delay:       delay,
			Cause:       Summary(err),
		})

		if err := ex.await(ctx, delay); err != nil {
			return zero, ex.cancelled(ctx, name, attempt, err)
		}
	}
}

// await parks the caller until the backoff timer fires or ctx ends
func (e *Executor) await(ctx context.Context, delay time.Duration) error {
	timer := e.clock.NewTimer(delay)
	select {
	case <-timer.C():
		return nil
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	}
}

func (e *Executor) cancelled(ctx context.Context, name string, last CallAttempt, err error) *FinalFailure {
	tag := Cancelled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		tag = Timeout
	}
	e.sink.Cancelled(ctx, CallCancelled{Call: name, Attempt: last, Cause: Summary(err)})
	return &FinalFailure{Tag: tag, Attempts: last.Number, Err: err}
}
