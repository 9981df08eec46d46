package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("remote down")

func failingCB(t *testing.T, cfg CircuitBreakerConfig, failures int) *CircuitBreaker {
	t.Helper()
	cb := NewCircuitBreaker(cfg)
	for i := 0; i < failures; i++ {
		err := cb.Execute(func() error { return errRemoteDown })
		require.ErrorIs(t, err, errRemoteDown)
	}
	return cb
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: time.Minute}
	cb := failingCB(t, cfg, 2)
	assert.Equal(t, CBClosed, cb.State())

	require.Error(t, cb.Execute(func() error { return errRemoteDown }))
	assert.Equal(t, CBOpen, cb.State())

	// While open, calls fast-fail without running fn
	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ran)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: time.Minute}
	cb := failingCB(t, cfg, 2)

	require.NoError(t, cb.Execute(func() error { return nil }))

	// Two more failures still do not trip it; the streak restarted
	require.Error(t, cb.Execute(func() error { return errRemoteDown }))
	require.Error(t, cb.Execute(func() error { return errRemoteDown }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond}
	cb := failingCB(t, cfg, 1)
	assert.Equal(t, CBOpen, cb.State())

	time.Sleep(15 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestCircuitBreaker_ClosesAfterProbeSuccesses(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 5 * time.Millisecond}
	cb := failingCB(t, cfg, 1)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 5 * time.Millisecond}
	cb := failingCB(t, cfg, 1)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errRemoteDown }))
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_StateStrings(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
