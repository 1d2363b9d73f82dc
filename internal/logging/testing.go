package logging

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger is a Logger whose entries are kept in memory for assertions.
// It records every level.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

// NewTestLogger returns a TestLogger with no stdout or OTLP output.
func NewTestLogger() *TestLogger {
	core, observed := observer.New(zapcore.DebugLevel)
	return &TestLogger{
		Logger:   &Logger{zap: zap.New(core), config: NewDefaultConfig()},
		observed: observed,
	}
}

// All returns every recorded entry.
func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

// FilterMessage returns the entries whose message is exactly msg.
func (t *TestLogger) FilterMessage(msg string) *observer.ObservedLogs {
	return t.observed.FilterMessage(msg)
}

// Reset drops recorded entries.
func (t *TestLogger) Reset() {
	t.observed.TakeAll()
}

func (t *TestLogger) matching(level zapcore.Level, substr string) []observer.LoggedEntry {
	var out []observer.LoggedEntry
	for _, e := range t.observed.FilterLevelExact(level).All() {
		if strings.Contains(e.Message, substr) {
			out = append(out, e)
		}
	}
	return out
}

// AssertLogged fails unless an entry at level has a message containing substr.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, substr string) {
	tb.Helper()
	if len(t.matching(level, substr)) == 0 {
		tb.Errorf("no %s entry containing %q; recorded: %v", level, substr, t.messages())
	}
}

// AssertNotLogged fails if any entry at level has a message containing substr.
func (t *TestLogger) AssertNotLogged(tb testing.TB, level zapcore.Level, substr string) {
	tb.Helper()
	if n := len(t.matching(level, substr)); n > 0 {
		tb.Errorf("found %d unexpected %s entries containing %q", n, level, substr)
	}
}

// AssertField fails unless some entry with message msg carries key=want.
//
// Values are compared in their encoded form, so zap.Int(k, 3) matches want 3
// and zap.Duration matches a time.Duration.
func (t *TestLogger) AssertField(tb testing.TB, msg, key string, want interface{}) {
	tb.Helper()
	want = normalizeFieldValue(want)

	var seen []interface{}
	for _, e := range t.observed.FilterMessage(msg).All() {
		got, ok := e.ContextMap()[key]
		if !ok {
			continue
		}
		if reflect.DeepEqual(got, want) {
			return
		}
		seen = append(seen, got)
	}
	tb.Errorf("message %q: field %q=%v (%T) not found; values seen: %v", msg, key, want, want, seen)
}

// AssertTraceCorrelation fails unless an entry with message msg carries both
// trace_id and span_id.
func (t *TestLogger) AssertTraceCorrelation(tb testing.TB, msg string) {
	tb.Helper()
	for _, e := range t.observed.FilterMessage(msg).All() {
		fields := e.ContextMap()
		_, hasTrace := fields["trace_id"]
		_, hasSpan := fields["span_id"]
		if hasTrace && hasSpan {
			return
		}
	}
	tb.Errorf("message %q has no trace_id/span_id", msg)
}

func (t *TestLogger) messages() []string {
	entries := t.observed.All()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Level.String() + ": " + e.Message
	}
	return out
}

// normalizeFieldValue widens want to the type the map encoder produces.
func normalizeFieldValue(want interface{}) interface{} {
	v := reflect.ValueOf(want)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return v.Uint()
	case reflect.Float32:
		return v.Float()
	}
	return want
}
