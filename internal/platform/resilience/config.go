package resilience

import "time"

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
	defaultHalfOpenMaxReq   = 1
)

// CircuitBreakerConfig guards one upstream: the Spond API or the token
// introspection service. Loaded from SPOND_CIRCUIT_* and ANUBIS_CIRCUIT_*.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold int
	// OpenTimeout is how long calls are rejected before a half-open trial.
	OpenTimeout time.Duration
	// HalfOpenMaxReq bounds the trial calls let through while half-open.
	HalfOpenMaxReq int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: defaultFailureThreshold,
		OpenTimeout:      defaultOpenTimeout,
		HalfOpenMaxReq:   defaultHalfOpenMaxReq,
	}
}

// withDefaults replaces unset limits and leaves Enabled alone.
func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return c
}
