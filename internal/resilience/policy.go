// Package resilience provides the retry policy and circuit breaker used at
// every point where an external collaborator is invoked.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls how a collaborator call is retried.
type Policy struct {
	// MaxAttempts counts the first try. 1 disables retries.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps any single delay.
	MaxBackoff time.Duration
	// Multiplier scales the delay after each attempt.
	Multiplier float64
	// JitterFraction spreads each delay by ±fraction.
	JitterFraction float64

	// Retryable decides whether a failed attempt is retried. Defaults to
	// IsTransient.
	Retryable func(err error) bool
}

// DefaultPolicy mirrors the reference pacing: three attempts starting at two
// seconds and doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.25,
	}
}

// NewPolicy builds a Policy from raw config values; zero or negative values
// fall back to DefaultPolicy.
func NewPolicy(maxAttempts, initialBackoffMs, maxBackoffMs int, multiplier, jitter float64) Policy {
	p := DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		p.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		p.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	if multiplier > 0 {
		p.Multiplier = multiplier
	}
	if jitter >= 0 {
		p.JitterFraction = jitter
	}
	return p
}

// Outcome is the explicit result of a guarded call. Exactly one of Value or
// Err is meaningful.
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts int
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Call invokes fn under the policy. Panics inside fn are recovered and
// reported as a *PanicError, which is never retried. Cancellation of ctx
// stops further attempts.
func Call[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) Outcome[T] {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var out Outcome[T]
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		out.Attempts = attempt
		out.Value, out.Err = guard(ctx, fn)
		if out.Err == nil {
			return out
		}

		if _, panicked := out.Err.(*PanicError); panicked {
			return out
		}
		if ctx.Err() != nil || !retryable(out.Err) || attempt == p.MaxAttempts {
			return out
		}

		delay := p.backoff(attempt)
		zap.L().Warn("resilience: retrying call",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(out.Err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return out
		case <-timer.C:
		}
	}
	return out
}

func guard[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			val, err = zero, &PanicError{Value: r}
		}
	}()
	return fn(ctx)
}

// backoff returns the delay before retry number attempt (1-based).
func (p Policy) backoff(attempt int) time.Duration {
	delay := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxBackoff > 0 && delay > float64(p.MaxBackoff) {
		delay = float64(p.MaxBackoff)
	}
	if p.JitterFraction > 0 {
		delay += (rand.Float64()*2 - 1) * delay * p.JitterFraction
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
