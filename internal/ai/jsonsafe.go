package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// NormalizeValue makes an arbitrarily nested value safe for JSON wire
// transport to the reasoning backend: timestamps become ISO-8601 strings,
// decimals and json.Number become native numbers, NaN and infinities
// become null, and non-string map keys are stringified. Pure and total —
// it never fails; unsupported scalars pass through unchanged.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		f, _ := x.Float64()
		return safeFloat(f)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return safeFloat(f)
		}
		return x.String()
	case float64:
		return safeFloat(x)
	case float32:
		return safeFloat(float64(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = NormalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = NormalizeValue(val)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return NormalizeValue(rv.Elem().Interface())
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = NormalizeValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = NormalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		// Round-trip through encoding/json so struct tags apply, then
		// normalize the generic form.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Sprint(v)
		}
		return NormalizeValue(generic)
	}

	return v
}

// MarshalSafe serializes a value for the conversation after normalization.
func MarshalSafe(v any) (string, error) {
	raw, err := json.Marshal(NormalizeValue(v))
	if err != nil {
		return "", fmt.Errorf("failed to serialize tool result: %w", err)
	}
	return string(raw), nil
}

func safeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
