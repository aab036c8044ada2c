package resilience

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	}, clock)

	require.NoError(t, b.Allow())
	b.Record(true)
	assert.Equal(t, CircuitStateClosed, b.State())

	b.Record(true)
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	clock.Advance(6 * time.Second)
	require.NoError(t, b.Allow(), "half-open trial should pass")
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one trial allowed in half-open")

	b.Record(false)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second}, clock)

	b.Record(true)
	clock.Advance(2 * time.Second)
	require.NoError(t, b.Allow())
	b.Record(true)

	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false}, nil)
	assert.Nil(t, b)
	assert.NoError(t, b.Allow())
	b.Record(true)
	assert.Equal(t, CircuitStateClosed, b.State())
}
