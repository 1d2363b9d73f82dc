package demo

import (
	"fmt"

	"github.com/fyrsmithlabs/otel-demo-service/internal/config"
)

// Config holds loop configuration. The increment is fixed at
// DefaultIncrement and is not configurable.
type Config struct {
	Interval config.Duration `koanf:"interval"`
}

// NewDefaultConfig returns the five second loop.
func NewDefaultConfig() *Config {
	return &Config{
		Interval: config.Duration(DefaultInterval),
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Interval.Duration() <= 0 {
		return fmt.Errorf("loop interval must be positive, got %s", c.Interval)
	}
	return nil
}

// Options converts the config into loop options.
func (c *Config) Options() []Option {
	return []Option{
		WithInterval(c.Interval.Duration()),
	}
}
