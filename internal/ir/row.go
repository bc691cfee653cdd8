package ir

import "encoding/json"

// Row is one produced output record flattened into positional values.
// Values appear in the order of the signature's output columns.
//
// Values are normalized: string, int64, float64, bool, []any,
// map[string]any, Node, Relationship, Path or nil.
type Row []any

// FromJSONNumbers replaces every json.Number in v, a value decoded with
// json.Decoder.UseNumber, by int64 when it is integral and float64
// otherwise. Slices and maps are rewritten in place.
func FromJSONNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i, e := range val {
			val[i] = FromJSONNumbers(e)
		}
		return val
	case map[string]any:
		for k, e := range val {
			val[k] = FromJSONNumbers(e)
		}
		return val
	default:
		return v
	}
}
