package rws

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

var symbolicDurations = map[string]time.Duration{
	"d":    Day,
	"D":    Day,
	"day":  Day,
	"h":    Hour,
	"H":    Hour,
	"hour": Hour,
}

// ParseDuration interprets a configured duration. Integers, finite floats and
// numeric strings are milliseconds. The strings "d", "D" and "day" mean one
// day, "h", "H" and "hour" one hour. Other strings are parsed with
// time.ParseDuration. Anything else, including NaN, infinities and millisecond
// counts too large for a time.Duration, fails with ErrInvalidDuration.
func ParseDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return millis(int64(val))
	case int8:
		return millis(int64(val))
	case int16:
		return millis(int64(val))
	case int32:
		return millis(int64(val))
	case int64:
		return millis(val)
	case uint:
		return unsignedMillis(uint64(val))
	case uint8:
		return millis(int64(val))
	case uint16:
		return millis(int64(val))
	case uint32:
		return millis(int64(val))
	case uint64:
		return unsignedMillis(val)
	case float32:
		return floatMillis(float64(val))
	case float64:
		return floatMillis(val)
	case string:
		return parseDurationString(val)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidDuration, v)
	}
}

// largest millisecond count a time.Duration can hold
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

func millis(ms int64) (time.Duration, error) {
	if ms > maxMillis || ms < -maxMillis {
		return 0, fmt.Errorf("%w: %dms out of range", ErrInvalidDuration, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func unsignedMillis(ms uint64) (time.Duration, error) {
	if ms > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %dms out of range", ErrInvalidDuration, ms)
	}
	return millis(int64(ms))
}

func floatMillis(ms float64) (time.Duration, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, ms)
	}
	if ms > float64(maxMillis) || ms < -float64(maxMillis) {
		return 0, fmt.Errorf("%w: %gms out of range", ErrInvalidDuration, ms)
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

func parseDurationString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, ok := symbolicDurations[s]; ok {
		return d, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return millis(ms)
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return floatMillis(ms)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return d, nil
}

// DurationHookFunc returns a mapstructure decode hook that converts values
// destined for time.Duration fields with ParseDuration.
func DurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		return ParseDuration(data)
	}
}
