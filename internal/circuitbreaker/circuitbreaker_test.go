package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("dependency down")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return New(Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          timeout,
		Name:             "test",
	})
}

func fail() error    { return errDown }
func succeed() error { return nil }

func TestExecutePassesThroughWhenClosed(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	err := cb.Execute(context.Background(), succeed)

	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), fail)
		require.ErrorIs(t, err, errDown)
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(context.Background(), succeed), ErrCircuitOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	require.Error(t, cb.Execute(context.Background(), fail))
	require.Error(t, cb.Execute(context.Background(), fail))
	require.NoError(t, cb.Execute(context.Background(), succeed))
	require.Error(t, cb.Execute(context.Background(), fail))
	require.Error(t, cb.Execute(context.Background(), fail))

	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenProbeClosesAfterSuccesses(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), succeed))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), succeed))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(context.Background(), fail), errDown)

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(context.Background(), succeed), ErrCircuitOpen)
}

func TestExecuteHonorsContext(t *testing.T) {
	cb := newTestBreaker(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := cb.Execute(ctx, func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestNewAppliesDefaults(t *testing.T) {
	cb := New(Config{Name: "defaults"})

	assert.Equal(t, DefaultConfig().FailureThreshold, cb.config.FailureThreshold)
	assert.Equal(t, DefaultConfig().SuccessThreshold, cb.config.SuccessThreshold)
	assert.Equal(t, DefaultConfig().Timeout, cb.config.Timeout)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}