// Package config provides configuration loading for otel-demo-service.
//
// Configuration is layered with koanf. Each package owns its section struct
// and its defaults (telemetry.NewDefaultConfig, logging.NewDefaultConfig,
// demo.NewDefaultConfig); this package only assembles the sources and
// unmarshals a section on top of the defaults the caller passes in.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes the service's own environment variables.
	EnvPrefix = "OTEL_DEMO_"
)

// Standard OpenTelemetry variables mapped onto the telemetry section.
var otelEnvKeys = map[string]string{
	"OTEL_EXPORTER_OTLP_ENDPOINT":         "telemetry.trace_endpoint",
	"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT": "telemetry.metrics_endpoint",
	"OTEL_SERVICE_NAME":                   "telemetry.service_name",
}

// Config is the merged configuration tree.
type Config struct {
	k *koanf.Koanf
}

// Load reads configuration from an optional YAML file, then overrides it with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables
//  2. YAML config file (only when configPath is non-empty)
//  3. Section defaults supplied to Unmarshal
//
// Environment variable mapping:
//
//	OTEL_EXPORTER_OTLP_ENDPOINT          -> telemetry.trace_endpoint
//	OTEL_EXPORTER_OTLP_METRICS_ENDPOINT  -> telemetry.metrics_endpoint
//	OTEL_SERVICE_NAME                    -> telemetry.service_name
//	OTEL_DEMO_LOOP_INTERVAL              -> loop.interval
//	OTEL_DEMO_LOGGING_LEVEL              -> logging.level
//	OTEL_DEMO_TELEMETRY_TRACE_PROTOCOL   -> telemetry.trace_protocol
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("OTEL_", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return &Config{k: k}, nil
}

// envValue drops empty variables so that an exported-but-blank variable
// leaves the default in place.
func envValue(name, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return EnvKey(name), value
}

// EnvKey maps an environment variable name to a config key.
// Returns "" for variables that are not part of the configuration.
//
// Strategy for OTEL_DEMO_ variables: split on the first underscore after the
// prefix (section.field_name pattern).
func EnvKey(name string) string {
	if key, ok := otelEnvKeys[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, EnvPrefix) {
		return ""
	}

	lower := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// Unmarshal decodes the section at key into out. Fields absent from every
// source keep the values already present in out.
func (c *Config) Unmarshal(key string, out interface{}) error {
	conf := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				numberToDurationHook(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           out,
			WeaklyTypedInput: true,
		},
	}
	if err := c.k.UnmarshalWithConf(key, out, conf); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", key, err)
	}
	return nil
}

// String returns the raw value at key, or "" if unset.
func (c *Config) String(key string) string {
	return c.k.String(key)
}

// readConfigFile opens the file once and validates it through the open
// descriptor before reading.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// validateConfigFileProperties checks file type and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("config path is not a regular file: %s", info.Name())
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}
