// Package config loads the product catalog service configuration from
// config.yaml, a .env file and CATALOG_ prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const serviceName = "catalog"

var _ Validator = (*Config)(nil)

type Config struct {
	HTTPServer HTTPConfig       `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Log        LogConfig        `koanf:"log"`
	PProf      PProfConfig      `koanf:"pprof"`
	GRPC       GrpcServerConfig `koanf:"grpc"`
	Shutdown   ShutdownConfig   `koanf:"shutdown"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	NATS       NATSConfig       `koanf:"nats"`
}

// Load reads the service configuration using the default sources.
func Load() (*Config, error) {
	return LoadWith(DefaultOptions(serviceName))
}

// LoadWith reads the service configuration from the given sources.
func LoadWith(opts Options) (*Config, error) {
	cfg, err := LoadInto(&Config{}, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- Database Configuration ---\n")
	b.WriteString(fmt.Sprintf("  database.url: %s\n", MaskURL(c.Database.URL)))
	b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Database.Timeout))
	b.WriteString(fmt.Sprintf("  database.circuitbreaker.consecutivefailures: %d\n", c.Database.CircuitBreaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  database.circuitbreaker.errorratepercent: %d\n", c.Database.CircuitBreaker.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  database.circuitbreaker.opentimeout: %s\n", c.Database.CircuitBreaker.OpenTimeout))

	b.WriteString("\n--- gRPC Configuration ---\n")
	b.WriteString(fmt.Sprintf("  grpc.port: %s\n", c.GRPC.Port))
	b.WriteString(fmt.Sprintf("  grpc.reflection: %t\n", c.GRPC.ReflectionEnabled))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.addr: %s\n", c.PProf.Addr))
	b.WriteString(fmt.Sprintf("  telemetry.enabled: %t\n", c.Telemetry.Enabled))
	b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.endpoint: %s\n", c.Telemetry.Traces.OtlpHttp.Endpoint))
	b.WriteString(fmt.Sprintf("  telemetry.metrics.enabled: %t\n", c.Telemetry.Metrics.Enabled))

	b.WriteString("\n--- Messaging ---\n")
	b.WriteString(fmt.Sprintf("  nats.enabled: %t\n", c.NATS.Enabled))
	b.WriteString(fmt.Sprintf("  nats.url: %s\n", c.NATS.Url))
	b.WriteString(fmt.Sprintf("  nats.timeout: %s\n", c.NATS.Timeout))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

// Validate checks if the configuration values are valid.
// The database section only gets its defaults here. It is checked separately
// by the caller: a missing or invalid URL must not stop the service from starting.
func (c *Config) Validate() error {
	c.applyPlatformDefaults()
	c.Database.ApplyDefaults()

	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	return nil
}

// applyPlatformDefaults maps the platform-standard DATABASE_URL and PORT
// variables onto the configuration when the prefixed ones are absent.
func (c *Config) applyPlatformDefaults() {
	if c.Database.URL == "" {
		c.Database.URL = os.Getenv("DATABASE_URL")
	}
	if c.HTTPServer.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			c.HTTPServer.Port = port
		}
	}
}
