package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a transient backend or transport failure.
var ErrNetwork = errors.New("network error")

// RetryableError marks an error as transient for Backoff.
type RetryableError struct{ Err error }

// Retryable wraps err so Backoff retries it. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries operations that fail with a Retryable error, doubling the
// wait after each failure.
type Backoff struct {
	Attempts int           // total tries; values below 1 mean one try
	Delay    time.Duration // wait before the second try
}

// DefaultBackoff is the policy used by RetryWithBackoff.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 250 * time.Millisecond}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last error is returned; ctx cancellation during a
// wait returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// RetryWithBackoff runs fn under DefaultBackoff.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
