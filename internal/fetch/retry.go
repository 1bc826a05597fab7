package fetch

import (
	"errors"
	"time"
)

// DelayPolicy maps a completed attempt count to the pause before the next try.
type DelayPolicy func(attempt int) time.Duration

// FixedDelay waits the same duration between every attempt.
func FixedDelay(d time.Duration) DelayPolicy {
	return func(int) time.Duration {
		return d
	}
}

// LinearDelay waits attempt*base, so each retry backs off a little longer.
func LinearDelay(base time.Duration) DelayPolicy {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps an error so WithRetry stops immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry runs op up to maxAttempts times, sleeping per the delay policy
// between tries. The attempt passed to op starts at 1. Errors wrapped with
// Permanent abort the loop and are returned unwrapped.
func WithRetry(maxAttempts int, delay DelayPolicy, op func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 && delay != nil {
			time.Sleep(delay(attempt))
		}
		err := op(attempt + 1)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return lastErr
}
