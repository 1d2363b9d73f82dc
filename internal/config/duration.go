package config

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Duration is a non-negative time.Duration that decodes from config text.
//
// Accepted forms are Go duration strings ("5s", "250ms") and bare integers,
// which are read as whole seconds so that OTEL_DEMO_LOOP_INTERVAL=5 works.
// YAML numbers (interval: 5, interval: 0.5) are seconds too; see
// numberToDurationHook.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	var parsed time.Duration
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		parsed = time.Duration(secs) * time.Second
	} else {
		parsed, err = time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
	}

	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d Duration) String() string {
	return d.Duration().String()
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

var durationType = reflect.TypeOf(Duration(0))

// numberToDurationHook decodes numeric config values into Duration as
// seconds. The text hook only sees strings, so without it a YAML integer
// would land in the underlying int64 as nanoseconds.
func numberToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}

		var secs float64
		v := reflect.ValueOf(data)
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			secs = float64(v.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			secs = float64(v.Uint())
		case reflect.Float32, reflect.Float64:
			secs = v.Float()
		default:
			return data, nil
		}

		if secs < 0 {
			return nil, fmt.Errorf("duration cannot be negative: %v", data)
		}
		if secs > math.MaxInt64/float64(time.Second) {
			return nil, fmt.Errorf("duration out of range: %v seconds", data)
		}
		return Duration(time.Duration(secs * float64(time.Second))), nil
	}
}
