package utils

import (
	"fmt"
	"reflect"
	"time"
)

// ParseDuration parses a duration string like "30s", falling back to def
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return def
	}
	return duration
}

// IsNumeric reports whether v holds any Go integer or float kind
func IsNumeric(v interface{}) bool {
	if v == nil {
		return false
	}
	kind := reflect.ValueOf(v).Kind()
	return kind >= reflect.Int && kind <= reflect.Float64
}

// Numeric safely converts supported types to float64.
func Numeric(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	default:
		rv := reflect.ValueOf(v)
		if IsNumeric(v) {
			return rv.Convert(reflect.TypeOf(float64(0))).Float()
		}
		return 0
	}
}

// ValuesEqual compares two decoded values. Numbers compare by value regardless
// of their Go type, so a JSON 3 (float64) equals a YAML 3 (int).
func ValuesEqual(a, b interface{}) bool {
	if IsNumeric(a) && IsNumeric(b) {
		return Numeric(a) == Numeric(b)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta.Comparable() && tb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// KeyOf renders a value as a grouping key
func KeyOf(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	if IsNumeric(v) {
		return fmt.Sprintf("%v", Numeric(v))
	}
	return fmt.Sprintf("%T:%v", v, v)
}
