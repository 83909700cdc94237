package config

import (
	"fmt"
	"time"
)

const (
	defaultConsecutiveFailures = 5
	defaultErrorRatePercent    = 50
	defaultOpenTimeout         = 5 * time.Second
)

// CircuitBreakerConfig controls when database calls stop being attempted.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// ApplyDefaults fills in unset values.
func (c *CircuitBreakerConfig) ApplyDefaults() {
	if c.ConsecutiveFailures == 0 {
		c.ConsecutiveFailures = defaultConsecutiveFailures
	}
	if c.ErrorRatePercent == 0 {
		c.ErrorRatePercent = defaultErrorRatePercent
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
}

// Validate fills in unset values and rejects an out of range error rate.
func (c *CircuitBreakerConfig) Validate() error {
	c.ApplyDefaults()
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("circuit_breaker.error_rate_percent must be between 0 and 100")
	}
	return nil
}
