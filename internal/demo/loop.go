package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/otel-demo-service/internal/logging"
)

const (
	// MeterName is the instrumentation scope of the counter.
	MeterName = "testmeter"
	// TracerName is the instrumentation scope of the loop spans.
	TracerName = "tracing-otel-subscriber"

	CounterName        = "testcounter"
	CounterDescription = "description of stuff"
	CounterUnit        = "bytes"

	// Message is logged, and used as the span name, on every step.
	Message = "doing the loop"

	DefaultInterval  = 5 * time.Second
	DefaultIncrement = int64(42)
)

// Words is the fixed payload set. It is never empty.
var Words = [...]string{"foo", "bar", "baz", "qux"}

// Constant attribute attached to every counter increment.
var constantAttr = attribute.String("key", "value")

// Picker returns a uniform random int in [0, n).
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Loop logs and counts a random word on a fixed interval.
type Loop struct {
	logger  *logging.Logger
	tracer  trace.Tracer
	counter metric.Int64Counter

	interval  time.Duration
	increment int64
	picker    Picker
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the sleep between steps.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.interval = d
	}
}

// WithIncrement sets the counter increment. Only tests use it; the service
// always adds DefaultIncrement.
func WithIncrement(n int64) Option {
	return func(l *Loop) {
		l.increment = n
	}
}

// WithPicker replaces the random source (for deterministic tests).
func WithPicker(p Picker) Option {
	return func(l *Loop) {
		l.picker = p
	}
}

// New builds the loop and its counter instrument.
func New(logger *logging.Logger, tracer trace.Tracer, meter metric.Meter, opts ...Option) (*Loop, error) {
	counter, err := meter.Int64Counter(CounterName,
		metric.WithDescription(CounterDescription),
		metric.WithUnit(CounterUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", CounterName, err)
	}

	l := &Loop{
		logger:    logger,
		tracer:    tracer,
		counter:   counter,
		interval:  DefaultInterval,
		increment: DefaultIncrement,
		picker:    globalPicker{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Interval returns the sleep between steps.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Pick returns one of Words, uniformly at random with replacement.
func (l *Loop) Pick() string {
	return Words[l.picker.IntN(len(Words))]
}

// Step runs one iteration and returns the word it used. The same word goes
// to the span, the log record and the counter.
func (l *Loop) Step(ctx context.Context) string {
	word := l.Pick()

	ctx, span := l.tracer.Start(ctx, Message, trace.WithAttributes(attribute.String("msg", word)))
	defer span.End()

	l.logger.Info(ctx, Message, zap.String("msg", word))

	l.counter.Add(ctx, l.increment, metric.WithAttributes(
		constantAttr,
		attribute.String("msg", word),
	))

	return word
}

// Run steps every interval, measured from the start of one step to the start
// of the next, until ctx is cancelled. It always returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// armed before the step so the interval runs start to start
		timer.Reset(l.interval)
		l.Step(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
