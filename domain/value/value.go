package value

import (
	"encoding/json"
	"math"

	"github.com/spf13/cast"
)

// Kind is the closed set of scalar shapes a record value can take.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an explicit tagged variant over the raw interface{} values found
// in records. Detectors operate on Value instead of re-probing interface{}.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Array  []interface{}
	Object map[string]interface{}
}

// Of converts a raw record value into its tagged variant
func Of(raw interface{}) Value {
	if raw == nil {
		return Value{Kind: KindNull}
	}

	switch v := raw.(type) {
	case bool:
		return Value{Kind: KindBool, Bool: v}
	case int:
		return Value{Kind: KindInt, Int: int64(v)}
	case int8:
		return Value{Kind: KindInt, Int: int64(v)}
	case int16:
		return Value{Kind: KindInt, Int: int64(v)}
	case int32:
		return Value{Kind: KindInt, Int: int64(v)}
	case int64:
		return Value{Kind: KindInt, Int: v}
	case uint:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint8:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint16:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint32:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint64:
		return Value{Kind: KindInt, Int: int64(v)}
	case float32:
		return floatValue(float64(v))
	case float64:
		return floatValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Value{Kind: KindInt, Int: i}
		}
		if f, err := v.Float64(); err == nil {
			return floatValue(f)
		}
		return Value{Kind: KindString, Str: v.String()}
	case string:
		return Value{Kind: KindString, Str: v}
	case []interface{}:
		return Value{Kind: KindArray, Array: v}
	case map[string]interface{}:
		return Value{Kind: KindObject, Object: v}
	default:
		// Anything exotic degrades to its string form rather than failing
		return Value{Kind: KindString, Str: cast.ToString(v)}
	}
}

// floatValue keeps JSON-decoded integral floats distinguishable from true
// fractions. 3.0 stays a float; the integer predicate decides integrality.
func floatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{Kind: KindNull}
	}
	return Value{Kind: KindFloat, Float: f}
}

// IsNull reports whether the value is the null variant
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// AsFloat returns the numeric content of an Int or Float value
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}
