package telemetry

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/otel-demo-service/internal/config"
)

// DefaultServiceName is reported as service.name when nothing overrides it.
const DefaultServiceName = "otel-demo-service"

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`

	// TraceEndpoint enables trace (and log) export when set.
	TraceEndpoint string `koanf:"trace_endpoint"`
	// MetricsEndpoint enables metric export when set.
	MetricsEndpoint string `koanf:"metrics_endpoint"`

	TraceProtocol   Transport `koanf:"trace_protocol"`   // grpc (default), http/protobuf or auto
	MetricsProtocol Transport `koanf:"metrics_protocol"` // auto (default), grpc or http/protobuf

	ExportInterval  config.Duration `koanf:"export_interval"`
	ShutdownTimeout config.Duration `koanf:"shutdown_timeout"`
}

// NewDefaultConfig returns defaults with both endpoints unset, so no exporter
// is built until the environment or a config file provides one.
func NewDefaultConfig() *Config {
	return &Config{
		ServiceName:     DefaultServiceName,
		ServiceVersion:  "dev",
		TraceProtocol:   TransportGRPC,
		MetricsProtocol: TransportAuto,
		ExportInterval:  config.Duration(60 * time.Second),
		ShutdownTimeout: config.Duration(5 * time.Second),
	}
}

// Validate checks configuration for errors. Endpoints are not validated here;
// an unparseable endpoint only disables its signal.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if !c.TraceProtocol.valid() {
		return fmt.Errorf("trace_protocol must be one of grpc, http/protobuf, auto; got %q", c.TraceProtocol)
	}
	if !c.MetricsProtocol.valid() {
		return fmt.Errorf("metrics_protocol must be one of grpc, http/protobuf, auto; got %q", c.MetricsProtocol)
	}
	if c.ExportInterval.Duration() <= 0 {
		return fmt.Errorf("export_interval must be positive")
	}
	if c.ShutdownTimeout.Duration() <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}
