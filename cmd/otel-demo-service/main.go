// Otel-demo-service emits a log record, a span and a counter increment every
// five seconds and exports them over OTLP.
//
// Exporters are enabled by the standard OpenTelemetry environment variables:
//
//	# Traces and logs over gRPC, metrics over gRPC (port 4317)
//	OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4317 \
//	OTEL_EXPORTER_OTLP_METRICS_ENDPOINT=http://localhost:4317 \
//	otel-demo-service
//
//	# Metrics over HTTP (any other port)
//	OTEL_EXPORTER_OTLP_METRICS_ENDPOINT=http://localhost:4318/v1/metrics otel-demo-service
//
// With neither variable set the service only logs to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/otel-demo-service/internal/config"
	"github.com/fyrsmithlabs/otel-demo-service/internal/demo"
	"github.com/fyrsmithlabs/otel-demo-service/internal/logging"
	"github.com/fyrsmithlabs/otel-demo-service/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "otel-demo-service",
		Short: "Emit demo logs, spans and metrics over OTLP",
		Long: `otel-demo-service logs a random word and increments a counter every five
seconds, exporting traces, logs and metrics to the endpoints named by
OTEL_EXPORTER_OTLP_ENDPOINT and OTEL_EXPORTER_OTLP_METRICS_ENDPOINT.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "otel-demo-service\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}

// settings is every config section, defaults overlaid with file and env.
type settings struct {
	telemetry *telemetry.Config
	logging   *logging.Config
	loop      *demo.Config
}

func loadSettings(configPath string) (*settings, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	s := &settings{
		telemetry: telemetry.NewDefaultConfig(),
		logging:   logging.NewDefaultConfig(),
		loop:      demo.NewDefaultConfig(),
	}
	s.telemetry.ServiceVersion = version

	if err := cfg.Unmarshal("telemetry", s.telemetry); err != nil {
		return nil, err
	}
	if err := cfg.Unmarshal("logging", s.logging); err != nil {
		return nil, err
	}
	if err := cfg.Unmarshal("loop", s.loop); err != nil {
		return nil, err
	}
	if err := s.loop.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loop config: %w", err)
	}
	return s, nil
}

// run bootstraps telemetry and runs the loop until ctx is cancelled.
//
// Any error before the loop starts is a startup fault and ends the process
// with a non-zero status.
func run(ctx context.Context, configPath string) error {
	s, err := loadSettings(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, s.telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	logger, err := logging.NewLogger(s.logging, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	defer func() {
		// ctx is already cancelled here; flush on a fresh one
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn(context.Background(), "telemetry shutdown", zap.Error(err))
		}
	}()

	logger = logger.With(zap.String("version", version))

	for _, epErr := range tel.EndpointErrors() {
		logger.Warn(ctx, "endpoint ignored", zap.Error(epErr))
	}

	logger.Info(ctx, "starting otel-demo-service",
		zap.Bool("traces_enabled", tel.TracesEnabled()),
		zap.String("trace_transport", string(tel.TraceTransport())),
		zap.Bool("metrics_enabled", tel.MetricsEnabled()),
		zap.String("metrics_transport", string(tel.MetricsTransport())),
		zap.Duration("interval", s.loop.Interval.Duration()))

	loop, err := demo.New(logger.Named("loop"),
		tel.Tracer(demo.TracerName),
		tel.Meter(demo.MeterName),
		s.loop.Options()...,
	)
	if err != nil {
		return fmt.Errorf("initializing demo loop: %w", err)
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info(context.Background(), "shutting down")
	return nil
}
