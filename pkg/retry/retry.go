// Package retry provides the bounded retry policy shared by every external
// collaborator: the RubyGems HTTP client, the madison API client and the
// rmadison/wnpp-check command runner.
//
// Only errors wrapped with [Retryable] trigger another attempt; everything
// else is returned immediately. The delay doubles after each failed attempt.
//
//	p := retry.Policy{Attempts: 3, Delay: time.Second}
//	err := p.Do(ctx, func() error {
//	    out, err := run(ctx, "rmadison", name)
//	    if strings.Contains(out, "curl:") {
//	        return retry.Retryable(errTransient)
//	    }
//	    return err
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Error wraps an error to indicate it should trigger a retry.
type Error struct{ Err error }

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Retryable wraps err as a retryable error. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

// IsRetryable reports whether err (or anything it wraps) is retryable.
func IsRetryable(err error) bool {
	return errors.As(err, new(*Error))
}

// Policy is a bounded exponential backoff.
type Policy struct {
	Attempts int           // Total attempts including the first (default: 3)
	Delay    time.Duration // Delay before the second attempt (default: 1s)
}

// Default returns the policy used when nothing is configured.
func Default() Policy {
	return Policy{Attempts: DefaultAttempts, Delay: DefaultDelay}
}

// WithDefaults returns a copy of p with zero values replaced by defaults.
// A negative delay is treated as zero (no waiting), which tests rely on.
func (p Policy) WithDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Delay == 0 {
		p.Delay = DefaultDelay
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. Returns the last error, or ctx.Err() if ctx is
// cancelled while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	p = p.WithDefaults()
	delay := p.Delay
	var lastErr error

	for i := range p.Attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < p.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
