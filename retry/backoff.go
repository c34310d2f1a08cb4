package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// RandomSource supplies uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a plain function into a RandomSource
type RandomFunc func() float64

// Float64 calls the underlying function
func (f RandomFunc) Float64() float64 { return f() }

// DefaultRandom draws from the global math/rand/v2 source, which is safe for
// concurrent use.
func DefaultRandom() RandomSource {
	return RandomFunc(rand.Float64)
}

// Backoff computes capped, jittered exponential delays
type Backoff struct {
	initial time.Duration
	max     time.Duration
	jitter  float64
	rnd     RandomSource
}

// NewBackoff creates a Backoff from cfg. A nil rnd uses DefaultRandom.
func NewBackoff(cfg Config, rnd RandomSource) *Backoff {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &Backoff{
		initial: cfg.InitialBackoff,
		max:     cfg.MaxBackoff,
		jitter:  cfg.JitterFraction,
		rnd:     rnd,
	}
}

// Base returns the un-jittered delay before the retry that follows attempt:
// InitialBackoff * 2^(attempt-1), capped at MaxBackoff. Attempts below 1 are
// treated as 1.
func (b *Backoff) Base(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(b.initial) * math.Pow(2, float64(attempt-1))
	if d >= float64(b.max) || math.IsInf(d, 1) {
		return b.max
	}
	return time.Duration(d)
}

// NextDelay returns the jittered delay to wait after the given attempt failed.
// The result stays within [0, MaxBackoff].
func (b *Backoff) NextDelay(attempt int) time.Duration {
	base := b.Base(attempt)
	if b.jitter <= 0 {
		return base
	}

	// u in [0,1) maps to a factor in [1-jitter, 1+jitter)
	factor := 1 + b.jitter*(2*b.rnd.Float64()-1)
	d := float64(base) * factor
	switch {
	case d < 0:
		return 0
	case d > float64(b.max):
		return b.max
	}
	return time.Duration(d)
}
