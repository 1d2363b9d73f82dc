package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry owns the providers built at startup.
//
// A nil provider means its signal is disabled; Tracer and Meter then fall
// back to the global (no-op) providers.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider

	traceTransport   Transport
	metricsTransport Transport

	endpointErrs []error
}

// New builds and globally registers the providers enabled by cfg.
//
// Absent or unparseable endpoints disable their signal. Exporter construction
// errors are returned; any provider already built is shut down first.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t := &Telemetry{config: cfg}

	// W3C Trace Context, installed whether or not anything is exported
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res := newResource(cfg)

	if u := t.endpoint("trace", cfg.TraceEndpoint); u != nil {
		if err := t.initTraces(ctx, u, res, &o); err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
	}

	if u := t.endpoint("metrics", cfg.MetricsEndpoint); u != nil {
		if err := t.initMetrics(ctx, u, res, &o); err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
	}

	return t, nil
}

// endpoint parses raw, recording the error when a configured value is
// unparseable. Returns nil when the signal stays disabled.
func (t *Telemetry) endpoint(signal, raw string) *url.URL {
	u, err := ParseEndpoint(raw)
	if errors.Is(err, ErrNoEndpoint) {
		return nil
	}
	if err != nil {
		t.endpointErrs = append(t.endpointErrs, fmt.Errorf("%s endpoint disabled: %w", signal, err))
		return nil
	}
	return u
}

func (t *Telemetry) initTraces(ctx context.Context, u *url.URL, res *resource.Resource, o *options) error {
	spanExporter := o.traceExporter
	if spanExporter == nil {
		exp, err := newTraceExporter(ctx, u, t.config.TraceProtocol)
		if err != nil {
			return err
		}
		spanExporter = exp
	}
	t.traceTransport = t.config.TraceProtocol.resolve(u)
	t.tracerProvider = newTracerProvider(spanExporter, res)
	otel.SetTracerProvider(t.tracerProvider)

	logExporter := o.logExporter
	if logExporter == nil {
		exp, err := newLogExporter(ctx, u)
		if err != nil {
			return err
		}
		logExporter = exp
	}
	t.loggerProvider = newLoggerProvider(logExporter, res)
	global.SetLoggerProvider(t.loggerProvider)

	return nil
}

func (t *Telemetry) initMetrics(ctx context.Context, u *url.URL, res *resource.Resource, o *options) error {
	metricExporter := o.metricExporter
	if metricExporter == nil {
		exp, err := newMetricExporter(ctx, u, t.config.MetricsProtocol)
		if err != nil {
			return err
		}
		metricExporter = exp
	}
	t.metricsTransport = t.config.MetricsProtocol.resolve(u)
	t.meterProvider = newMeterProvider(metricExporter, res, t.config)
	otel.SetMeterProvider(t.meterProvider)
	return nil
}

// Tracer returns a tracer for the given instrumentation scope.
//
// Returns the global tracer if traces are disabled.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter for the given instrumentation scope.
//
// Returns the global meter if metrics are disabled.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// LoggerProvider returns the log provider for the otelzap bridge, or nil when
// traces (and with them log export) are disabled.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	if t == nil || t.loggerProvider == nil {
		return nil
	}
	return t.loggerProvider
}

// TracesEnabled reports whether a tracer provider was built.
func (t *Telemetry) TracesEnabled() bool {
	return t != nil && t.tracerProvider != nil
}

// MetricsEnabled reports whether a meter provider was built.
func (t *Telemetry) MetricsEnabled() bool {
	return t != nil && t.meterProvider != nil
}

// TraceTransport returns the transport used for traces, or "" if disabled.
func (t *Telemetry) TraceTransport() Transport {
	if t == nil {
		return ""
	}
	return t.traceTransport
}

// MetricsTransport returns the transport used for metrics, or "" if disabled.
func (t *Telemetry) MetricsTransport() Transport {
	if t == nil {
		return ""
	}
	return t.metricsTransport
}

// EndpointErrors returns the parse errors of endpoints that were set but
// could not be used.
func (t *Telemetry) EndpointErrors() []error {
	if t == nil {
		return nil
	}
	return t.endpointErrs
}

// Shutdown flushes and stops all providers.
//
// Uses the configured shutdown timeout if ctx has no deadline.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.ShutdownTimeout.Duration())
		defer cancel()
	}

	var errs []error

	if t.loggerProvider != nil {
		if err := t.loggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logger provider shutdown: %w", err))
		}
	}

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
		}
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ForceFlush immediately exports all pending telemetry data.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error

	if t.loggerProvider != nil {
		if err := t.loggerProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log flush: %w", err))
		}
	}

	if t.tracerProvider != nil {
		if err := t.tracerProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace flush: %w", err))
		}
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter flush: %w", err))
		}
	}

	return errors.Join(errs...)
}
