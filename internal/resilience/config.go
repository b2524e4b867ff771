package resilience

import "time"

// Config tunes the gate.
type Config struct {
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold int
	// SuccessThreshold consecutive half-open successes close it again.
	SuccessThreshold int
	// OpenTimeout is how long an open circuit rejects before probing.
	OpenTimeout time.Duration

	// MaxTokens is the bucket size; RefillRate is tokens per second.
	MaxTokens  float64
	RefillRate float64

	// DefaultRetryAfter applies to a 429 without a Retry-After header.
	DefaultRetryAfter time.Duration
}

// DefaultConfig suits one person's terminals sharing a backend.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  5,
		SuccessThreshold:  2,
		OpenTimeout:       30 * time.Second,
		MaxTokens:         50,
		RefillRate:        10,
		DefaultRetryAfter: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = d.SuccessThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.RefillRate <= 0 {
		c.RefillRate = d.RefillRate
	}
	if c.DefaultRetryAfter <= 0 {
		c.DefaultRetryAfter = d.DefaultRetryAfter
	}
	return c
}
