// Package retry provides a blocking exponential-backoff wrapper for
// operations against flaky remote services.
package retry

import "time"

// Config defines retry behavior.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration

	// Sleep is the wait function between attempts; defaults to time.Sleep.
	// Injectable for deterministic tests.
	Sleep func(time.Duration)
}

// DefaultConfig provides the stock 3-attempt, 1s-initial-delay policy.
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 1 * time.Second,
}

// Do runs op up to cfg.MaxAttempts times. The delay before retry i
// (0-indexed) is InitialDelay * 2^i, with no jitter. The final attempt's
// error is returned unchanged so callers can inspect it with errors.As.
func Do[T any](cfg Config, op func() (T, error)) (T, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = DefaultConfig.MaxAttempts
	}
	delay := cfg.InitialDelay
	if delay <= 0 {
		delay = DefaultConfig.InitialDelay
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var zero T
	for i := 0; ; i++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if i == attempts-1 {
			return zero, err
		}
		sleep(delay * (1 << i))
	}
}
