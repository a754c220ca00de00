package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failing(_ context.Context) (string, error) { return "", errors.New("down") }
func passing(_ context.Context) (string, error) { return "up", nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("anthropic", 2, time.Minute)
	ctx := context.Background()

	_, _ = Guard(ctx, cb, failing)
	assert.Equal(t, BreakerClosed, cb.State())
	_, _ = Guard(ctx, cb, failing)
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	_, err := Guard(ctx, cb, func(_ context.Context) (string, error) {
		called = true
		return "", nil
	})
	require.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenTrialCall(t *testing.T) {
	cb := NewCircuitBreaker("gemini", 1, time.Minute)
	now := time.Now()
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = Guard(ctx, cb, failing)
	assert.Equal(t, BreakerOpen, cb.State())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	val, err := Guard(ctx, cb, passing)
	require.NoError(t, err)
	assert.Equal(t, "up", val)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("perplexity", 3, time.Second)
	now := time.Now()
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = Guard(ctx, cb, failing)
	}
	now = now.Add(2 * time.Second)
	_, err := Guard(ctx, cb, failing)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker("x", 2, time.Minute)
	ctx := context.Background()
	_, _ = Guard(ctx, cb, failing)
	_, _ = Guard(ctx, cb, passing)
	_, _ = Guard(ctx, cb, failing)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_CanceledCallerDoesNotTrip(t *testing.T) {
	cb := NewCircuitBreaker("x", 1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Guard(ctx, cb, func(ctx context.Context) (string, error) { return "", ctx.Err() })
	require.Error(t, err)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
