package logging

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// recordingExporter keeps exported log records in memory.
type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) ForceFlush(context.Context) error { return nil }
func (e *recordingExporter) Shutdown(context.Context) error   { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	bodies := make([]string, 0, len(e.records))
	for _, r := range e.records {
		bodies = append(bodies, r.Body().AsString())
	}
	return bodies
}

func newRecordingProvider() (*sdklog.LoggerProvider, *recordingExporter) {
	exp := &recordingExporter{}
	return sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp))), exp
}

func TestNewDualCore_StdoutOnly(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.OTEL = false

	core, err := newDualCore(cfg, nil, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.NotNil(t, core)
}

func TestNewDualCore_NilProviderSkipsOTEL(t *testing.T) {
	cfg := NewDefaultConfig()

	core, err := newDualCore(cfg, nil, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.NotNil(t, core)
}

func TestNewDualCore_NoOutputs(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Stdout = false
	cfg.OTEL = false

	_, err := newDualCore(cfg, nil, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one output")
}

func TestLogger_BothOutputs(t *testing.T) {
	provider, exp := newRecordingProvider()
	var buf bytes.Buffer

	logger, err := newLogger(NewDefaultConfig(), provider, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info(context.Background(), "doing the loop", zap.String("msg", "bar"))

	assert.Contains(t, buf.String(), "doing the loop")
	assert.Equal(t, []string{"doing the loop"}, exp.bodies())
}

func TestLogger_OTELRespectsLevel(t *testing.T) {
	provider, exp := newRecordingProvider()
	cfg := NewDefaultConfig()
	cfg.Stdout = false
	cfg.Level = zapcore.InfoLevel

	logger, err := newLogger(cfg, provider, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)

	logger.Debug(context.Background(), "dropped")
	logger.With(zap.String("k", "v")).Debug(context.Background(), "dropped child")
	logger.Info(context.Background(), "exported")

	assert.Equal(t, []string{"exported"}, exp.bodies())
}
