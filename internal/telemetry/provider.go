package telemetry

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	tracesPath  = "/v1/traces"
	metricsPath = "/v1/metrics"
)

// newResource creates a resource describing the service.
func newResource(cfg *Config) *resource.Resource {
	// Standalone resource: resource.Default() carries a different semconv
	// schema URL and would fail to merge.
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)
}

// newTraceExporter creates the OTLP span exporter for u.
func newTraceExporter(ctx context.Context, u *url.URL, protocol Transport) (trace.SpanExporter, error) {
	var (
		exporter trace.SpanExporter
		err      error
	)

	switch protocol.resolve(u) {
	case TransportHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(u.Host),
			// OTEL_EXPORTER_OTLP_ENDPOINT is a base URL
			otlptracehttp.WithURLPath(signalPath(u, tracesPath, false)),
		}
		if insecure(u) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default: // grpc
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(u.Host),
		}
		if insecure(u) {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	}

	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return exporter, nil
}

// newMetricExporter creates the OTLP metric exporter for u. With the default
// auto protocol, port 4317 selects gRPC and anything else selects HTTP.
func newMetricExporter(ctx context.Context, u *url.URL, protocol Transport) (metric.Exporter, error) {
	var (
		exporter metric.Exporter
		err      error
	)

	// Cumulative temporality regardless of
	// OTEL_EXPORTER_OTLP_METRICS_TEMPORALITY_PREFERENCE inherited from a parent.
	cumulativeSelector := func(metric.InstrumentKind) metricdata.Temporality {
		return metricdata.CumulativeTemporality
	}

	switch protocol.resolve(u) {
	case TransportGRPC:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(u.Host),
			otlpmetricgrpc.WithTemporalitySelector(cumulativeSelector),
		}
		if insecure(u) {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	default: // http/protobuf
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(u.Host),
			otlpmetrichttp.WithURLPath(signalPath(u, metricsPath, true)),
			otlpmetrichttp.WithTemporalitySelector(cumulativeSelector),
		}
		if insecure(u) {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	}

	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	return exporter, nil
}

// newLogExporter creates the OTLP gRPC log exporter that rides along with
// trace export.
func newLogExporter(ctx context.Context, u *url.URL) (sdklog.Exporter, error) {
	opts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(u.Host),
	}
	if insecure(u) {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}
	return exporter, nil
}

// newTracerProvider wraps exporter in a batch span processor.
func newTracerProvider(exporter trace.SpanExporter, res *resource.Resource) *trace.TracerProvider {
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
}

// newMeterProvider wraps exporter in a periodic reader.
func newMeterProvider(exporter metric.Exporter, res *resource.Resource, cfg *Config) *metric.MeterProvider {
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(
			metric.NewPeriodicReader(
				exporter,
				metric.WithInterval(cfg.ExportInterval.Duration()),
			),
		),
	)
}

// newLoggerProvider wraps exporter in a batch log processor.
func newLoggerProvider(exporter sdklog.Exporter, res *resource.Resource) *sdklog.LoggerProvider {
	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
}

// Option configures New.
type Option func(*options)

type options struct {
	traceExporter  trace.SpanExporter
	metricExporter metric.Exporter
	logExporter    sdklog.Exporter
}

// WithTraceExporter overrides the OTLP span exporter (for testing). It is
// only used when the trace endpoint is configured.
func WithTraceExporter(exp trace.SpanExporter) Option {
	return func(opts *options) {
		opts.traceExporter = exp
	}
}

// WithMetricExporter overrides the OTLP metric exporter (for testing). It is
// only used when the metrics endpoint is configured.
func WithMetricExporter(exp metric.Exporter) Option {
	return func(opts *options) {
		opts.metricExporter = exp
	}
}

// WithLogExporter overrides the OTLP log exporter (for testing).
func WithLogExporter(exp sdklog.Exporter) Option {
	return func(opts *options) {
		opts.logExporter = exp
	}
}
