package retry

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of attempts, including the first
	DefaultMaxAttempts = 3

	// DefaultInitialBackoff is the delay after the first failed attempt
	DefaultInitialBackoff = 2 * time.Second

	// DefaultMaxBackoff caps every computed delay
	DefaultMaxBackoff = 30 * time.Second

	// DefaultJitterFraction spreads delays by ±10%
	DefaultJitterFraction = 0.1
)

// Config holds the retry policy for every logical call made through an Executor.
// It is treated as an immutable value once handed to NewExecutor.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64
}

// DefaultConfig returns the production retry policy
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		JitterFraction: DefaultJitterFraction,
	}
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial backoff must be positive, got %v", c.InitialBackoff)
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max backoff %v must not be less than initial backoff %v", c.MaxBackoff, c.InitialBackoff)
	}
	if c.JitterFraction < 0 || c.JitterFraction > 1 {
		return fmt.Errorf("jitter fraction must be within [0,1], got %v", c.JitterFraction)
	}
	return nil
}
