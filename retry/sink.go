package retry

import (
	"context"

	"github.com/gaborage/webclient/logger"
)

// NopSink discards every event
type NopSink struct{}

func (NopSink) AttemptStarted(context.Context, AttemptStarted) {}
func (NopSink) RetryScheduled(context.Context, RetryScheduled) {}
func (NopSink) Exhausted(context.Context, Exhausted)           {}
func (NopSink) Succeeded(context.Context, Succeeded)           {}
func (NopSink) Cancelled(context.Context, CallCancelled)       {}

// MultiSink fans every event out to each of its sinks in order
type MultiSink []Sink

func (m MultiSink) AttemptStarted(ctx context.Context, e AttemptStarted) {
	for _, s := range m {
		s.AttemptStarted(ctx, e)
	}
}

func (m MultiSink) RetryScheduled(ctx context.Context, e RetryScheduled) {
	for _, s := range m {
		s.RetryScheduled(ctx, e)
	}
}

func (m MultiSink) Exhausted(ctx context.Context, e Exhausted) {
	for _, s := range m {
		s.Exhausted(ctx, e)
	}
}

func (m MultiSink) Succeeded(ctx context.Context, e Succeeded) {
	for _, s := range m {
		s.Succeeded(ctx, e)
	}
}

func (m MultiSink) Cancelled(ctx context.Context, e CallCancelled) {
	for _, s := range m {
		s.Cancelled(ctx, e)
	}
}

// LogSink writes each event as a single structured log line
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a sink that logs through log
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) AttemptStarted(ctx context.Context, e AttemptStarted) {
	s.logger.WithContext(ctx).Debug().
		Str("call", e.Call).
		Int("attempt", e.Attempt.Number).
		Msg("Attempt started")
}

func (s *LogSink) RetryScheduled(ctx context.Context, e RetryScheduled) {
	s.logger.WithContext(ctx).Warn().
		Str("call", e.Call).
		Int("attempt", e.Attempt.Number).
		Int("max_attempts", e.MaxAttempts).
		Str("tag", e.Tag.String()).
		Dur("delay", e.Delay).
		Str("cause", e.Cause).
		Msg("Retrying request after backoff")
}

func (s *LogSink) Exhausted(ctx context.Context, e Exhausted) {
	s.logger.WithContext(ctx).Error().
		Str("call", e.Call).
		Int("total_attempts", e.TotalAttempts).
		Int("max_attempts", e.MaxAttempts).
		Str("tag", e.Tag.String()).
		Str("cause", e.Cause).
		Msg("Retry attempts exhausted")
}

func (s *LogSink) Succeeded(ctx context.Context, e Succeeded) {
	s.logger.WithContext(ctx).Debug().
		Str("call", e.Call).
		Int("attempt", e.Attempt.Number).
		Msg("Attempt succeeded")
}

func (s *LogSink) Cancelled(ctx context.Context, e CallCancelled) {
	s.logger.WithContext(ctx).Warn().
		Str("call", e.Call).
		Int("attempt", e.Attempt.Number).
		Str("cause", e.Cause).
		Msg("Call cancelled")
}
