// Package telemetry bootstraps the OpenTelemetry SDK for otel-demo-service.
//
// # Overview
//
// The bootstrap reads two optional endpoints and builds only the providers
// they enable:
//
//   - trace endpoint (OTEL_EXPORTER_OTLP_ENDPOINT): batch span exporter over
//     gRPC, plus a batch log exporter so the logging package can layer an
//     otelzap core over stdout.
//   - metrics endpoint (OTEL_EXPORTER_OTLP_METRICS_ENDPOINT): periodic metric
//     exporter. Port 4317 selects gRPC, any other port selects HTTP.
//
// The W3C TraceContext propagator is always installed. Providers that are
// built are also registered globally.
//
// # Usage
//
//	cfg := telemetry.NewDefaultConfig()
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err // exporter construction failed; startup cannot continue
//	}
//	defer tel.Shutdown(context.Background())
//
//	meter := tel.Meter("testmeter")
//
// # Error Handling
//
// An absent endpoint disables its signal silently. An endpoint that does not
// parse also disables its signal; the parse error is kept and reported by
// EndpointErrors so the caller can log it. Failing to construct an exporter is
// returned from New and is fatal to startup.
//
// # Testing
//
// Use TestTelemetry for tests:
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
