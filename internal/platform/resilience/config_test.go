package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerConfig_WithDefaultsKeepsExplicitLimits(t *testing.T) {
	t.Parallel()

	got := CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: -time.Second}.withDefaults()

	assert.False(t, got.Enabled)
	assert.Equal(t, 3, got.FailureThreshold)
	assert.Equal(t, defaultOpenTimeout, got.OpenTimeout)
	assert.Equal(t, defaultHalfOpenMaxReq, got.HalfOpenMaxReq)
}

func TestNewCircuitBreaker_DisabledSpondBreakerIsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1}, nil))
}
