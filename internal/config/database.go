package config

import (
	"fmt"
	"strings"
	"time"
)

const defaultDatabaseTimeout = 10 * time.Second

type DatabaseConfig struct {
	URL            string               `koanf:"url"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// ApplyDefaults fills in the timeout and circuit breaker values left unset.
func (c *DatabaseConfig) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultDatabaseTimeout
	}
	c.CircuitBreaker.ApplyDefaults()
}

// Validate reports a missing or malformed URL. The service treats this as a
// connection failure rather than a fatal configuration error.
func (c *DatabaseConfig) Validate() error {
	c.ApplyDefaults()
	if err := c.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// MaskURL hides the credentials part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}
