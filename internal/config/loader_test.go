package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSection struct {
	Endpoint string   `koanf:"trace_endpoint"`
	Metrics  string   `koanf:"metrics_endpoint"`
	Service  string   `koanf:"service_name"`
	Interval Duration `koanf:"interval"`
	Enabled  bool     `koanf:"enabled"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"OTEL_EXPORTER_OTLP_ENDPOINT", "telemetry.trace_endpoint"},
		{"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "telemetry.metrics_endpoint"},
		{"OTEL_SERVICE_NAME", "telemetry.service_name"},
		{"OTEL_DEMO_LOOP_INTERVAL", "loop.interval"},
		{"OTEL_DEMO_TELEMETRY_TRACE_PROTOCOL", "telemetry.trace_protocol"},
		{"OTEL_DEMO_LOGGING_LEVEL", "logging.level"},
		{"OTEL_DEMO_LOOP", ""},
		{"OTEL_DEMO_", ""},
		{"OTEL_TRACES_SAMPLER", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnvKey(tt.name))
		})
	}
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "http://collector:4318/v1/metrics")

	cfg, err := Load("")
	require.NoError(t, err)

	section := testSection{Service: "default-name"}
	require.NoError(t, cfg.Unmarshal("telemetry", &section))

	assert.Equal(t, "", section.Endpoint)
	assert.Equal(t, "http://collector:4318/v1/metrics", section.Metrics)
	assert.Equal(t, "default-name", section.Service, "unset fields keep defaults")
}

func TestLoad_YAMLNumberDurationsAreSeconds(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr bool
	}{
		{name: "integer", yaml: "loop:\n  interval: 5\n", want: 5 * time.Second},
		{name: "float", yaml: "loop:\n  interval: 0.5\n", want: 500 * time.Millisecond},
		{name: "string still parsed", yaml: "loop:\n  interval: 3s\n", want: 3 * time.Second},
		{name: "negative", yaml: "loop:\n  interval: -2\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)

			var section testSection
			err = cfg.Unmarshal("loop", &section)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, section.Interval.Duration())
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, `loop:
  interval: 250ms
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	var section testSection
	require.NoError(t, cfg.Unmarshal("loop", &section))
	assert.Equal(t, 250*time.Millisecond, section.Interval.Duration())
	assert.True(t, section.Enabled)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `loop:
  interval: 250ms
`)
	t.Setenv("OTEL_DEMO_LOOP_INTERVAL", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	var section testSection
	require.NoError(t, cfg.Unmarshal("loop", &section))
	assert.Equal(t, 2*time.Second, section.Interval.Duration())
	assert.Equal(t, "2s", cfg.String("loop.interval"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
}

func TestLoad_FileTooLarge(t *testing.T) {
	big := make([]byte, maxConfigFileSize+1)
	for i := range big {
		big[i] = '#'
	}
	path := filepath.Join(t.TempDir(), "big.yaml")
	require.NoError(t, os.WriteFile(path, big, 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "loop: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestUnmarshal_InvalidDuration(t *testing.T) {
	t.Setenv("OTEL_DEMO_LOOP_INTERVAL", "soon")

	cfg, err := Load("")
	require.NoError(t, err)

	var section testSection
	err = cfg.Unmarshal("loop", &section)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal loop config")
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("5s")))
	assert.Equal(t, 5*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte(" 250ms ")))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("7")))
	assert.Equal(t, 7*time.Second, d.Duration(), "bare integers are seconds")

	require.Error(t, d.UnmarshalText([]byte("-1s")))
	require.Error(t, d.UnmarshalText([]byte("-3")))
	require.Error(t, d.UnmarshalText([]byte("five")))

	text, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
	assert.Equal(t, "1.5s", Duration(1500*time.Millisecond).String())
}

func TestLoad_BlankEnvironmentKeepsDefaults(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	section := testSection{Service: "default-name", Metrics: "http://default:4318"}
	require.NoError(t, cfg.Unmarshal("telemetry", &section))

	assert.Equal(t, "default-name", section.Service)
	assert.Equal(t, "http://default:4318", section.Metrics)
}
