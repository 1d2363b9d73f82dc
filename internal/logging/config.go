// internal/logging/config.go
package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level  zapcore.Level `koanf:"level"`
	Format string        `koanf:"format"`
	// Name is the logger name printed with every entry and the otelzap
	// instrumentation scope.
	Name   string            `koanf:"name"`
	Stdout bool              `koanf:"stdout"`
	OTEL   bool              `koanf:"otel"` // only takes effect when a log provider exists
	Caller bool              `koanf:"caller"`
	Fields map[string]string `koanf:"fields"`
}

// NewDefaultConfig returns debug-level console logging to stdout, mirrored to
// OpenTelemetry whenever trace export is on.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.DebugLevel,
		Format: "console",
		Name:   "otel-demo-service",
		Stdout: true,
		OTEL:   true,
		Caller: true,
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if !c.Stdout && !c.OTEL {
		return fmt.Errorf("at least one output must be enabled (stdout or otel)")
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}
