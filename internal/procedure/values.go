package procedure

import (
	"encoding"
	"fmt"
	"math"
	"reflect"

	"github.com/roach88/procrt/internal/ir"
)

var (
	nodeType         = reflect.TypeFor[ir.Node]()
	relationshipType = reflect.TypeFor[ir.Relationship]()
	pathType         = reflect.TypeFor[ir.Path]()

	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// NormalizeValue converts a record field value into its row form.
//
// Integers become int64, floats float64, named string and bool kinds their
// underlying type, slices []any and string-keyed maps map[string]any.
// Entities pass through by value. Values that cannot be represented, such
// as a uint64 above math.MaxInt64, are an error rather than a silent
// conversion.
func NormalizeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return normalize(reflect.ValueOf(v))
}

func normalize(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Type() {
	case nodeType, relationshipType, pathType:
		return v.Interface(), nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return normalize(v.Elem())
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows INTEGER", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			elem, err := normalize(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("cannot represent %s as MAP", v.Type())
		}
		if v.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			elem, err := normalize(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			out[key] = elem
		}
		return out, nil
	}

	return nil, fmt.Errorf("cannot represent %s as a procedure value", v.Type())
}

// NormalizeAs converts a record field value into its row form for a column
// declared as tag.
//
// A value whose type implements encoding.TextMarshaler becomes its text in
// a STRING column, and integers widen to float64 in a FLOAT column. Lists
// are converted element by element. Any other value that does not conform
// to tag after NormalizeValue is an error.
func NormalizeAs(tag ir.TypeTag, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return normalizeAs(tag, reflect.ValueOf(v))
}

func normalizeAs(tag ir.TypeTag, v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil, nil
	}

	if tag.Kind() == ir.KindString && v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, fmt.Errorf("marshal %s as %s: %w", v.Type(), tag, err)
		}
		return string(text), nil
	}
	if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		return normalizeAs(tag, v.Elem())
	}

	if elem, ok := tag.Elem(); ok && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		out := make([]any, v.Len())
		for i := range out {
			val, err := normalizeAs(elem, v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = val
		}
		return out, nil
	}

	out, err := normalize(v)
	if err != nil || out == nil {
		return out, err
	}
	if n, ok := out.(int64); ok && tag.Kind() == ir.KindFloat {
		return float64(n), nil
	}
	if !Conforms(tag, out) {
		return nil, fmt.Errorf("%s value does not conform to %s", v.Type(), tag)
	}
	return out, nil
}

// Conforms reports whether v is acceptable for a parameter of type tag.
// nil is accepted for every tag and means "no value".
func Conforms(tag ir.TypeTag, v any) bool {
	if v == nil {
		return true
	}
	return conforms(tag, reflect.ValueOf(v))
}

func conforms(tag ir.TypeTag, v reflect.Value) bool {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}

	switch tag.Kind() {
	case ir.KindAny:
		return true
	case ir.KindString:
		return v.Kind() == reflect.String || marshalsText(v.Type())
	case ir.KindBoolean:
		return v.Kind() == reflect.Bool
	case ir.KindInteger:
		return isInteger(v.Kind())
	case ir.KindFloat:
		// Integers widen to FLOAT; floats never narrow to INTEGER.
		return isInteger(v.Kind()) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
	case ir.KindMap:
		return v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
	case ir.KindNode:
		return v.Type() == nodeType
	case ir.KindRelationship:
		return v.Type() == relationshipType
	case ir.KindPath:
		return v.Type() == pathType
	case ir.KindList:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return false
		}
		elem, _ := tag.Elem()
		for i := 0; i < v.Len(); i++ {
			if !conforms(elem, v.Index(i)) {
				return false
			}
		}
		return true
	}
	return false
}

// marshalsText reports whether t, or a pointer to it, renders itself as
// text. Such values are accepted wherever a STRING is.
func marshalsText(t reflect.Type) bool {
	return t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// ConvertArg converts a positional argument to the Go type of the
// parameter field it is assigned to. nil becomes the zero value. Integer
// conversions that would overflow the target are an error. A string is
// parsed into a target type that implements encoding.TextUnmarshaler.
func ConvertArg(v any, to reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(to), nil
	}
	return convert(reflect.ValueOf(v), to)
}

func convert(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(to), nil
		}
		v = v.Elem()
	}
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(to), nil
		}
		return convert(v.Elem(), to)
	}

	if v.Kind() == reflect.String && reflect.PointerTo(to).Implements(textUnmarshalerType) {
		out := reflect.New(to)
		if err := out.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(v.String())); err != nil {
			return reflect.Value{}, fmt.Errorf("cannot parse %q as %s: %w", v.String(), to, err)
		}
		return out.Elem(), nil
	}

	switch to.Kind() {
	case reflect.Pointer:
		elem, err := convert(v, to.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(to.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	case reflect.String, reflect.Bool:
		if v.Kind() == to.Kind() {
			return v.Convert(to), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case isSigned(v.Kind()):
			out := reflect.New(to).Elem()
			if out.OverflowInt(v.Int()) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", v.Int(), to)
			}
			out.SetInt(v.Int())
			return out, nil
		case isUnsigned(v.Kind()):
			out := reflect.New(to).Elem()
			if v.Uint() > math.MaxInt64 || out.OverflowInt(int64(v.Uint())) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", v.Uint(), to)
			}
			out.SetInt(int64(v.Uint()))
			return out, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch {
		case isSigned(v.Kind()):
			out := reflect.New(to).Elem()
			if v.Int() < 0 || out.OverflowUint(uint64(v.Int())) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", v.Int(), to)
			}
			out.SetUint(uint64(v.Int()))
			return out, nil
		case isUnsigned(v.Kind()):
			out := reflect.New(to).Elem()
			if out.OverflowUint(v.Uint()) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", v.Uint(), to)
			}
			out.SetUint(v.Uint())
			return out, nil
		}
	case reflect.Float32, reflect.Float64:
		if isInteger(v.Kind()) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64 {
			return v.Convert(to), nil
		}
	case reflect.Slice:
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			out := reflect.MakeSlice(to, v.Len(), v.Len())
			for i := 0; i < v.Len(); i++ {
				elem, err := convert(v.Index(i), to.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
				}
				out.Index(i).Set(elem)
			}
			return out, nil
		}
	case reflect.Map:
		if v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String && to.Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(to, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				elem, err := convert(iter.Value(), to.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("[%q]: %w", iter.Key().String(), err)
				}
				out.SetMapIndex(iter.Key().Convert(to.Key()), elem)
			}
			return out, nil
		}
	case reflect.Interface:
		if v.Type().Implements(to) {
			out := reflect.New(to).Elem()
			out.Set(v)
			return out, nil
		}
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), to)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
