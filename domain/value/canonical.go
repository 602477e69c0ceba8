package value

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// CircularSentinel replaces any value that refers back to one of its parents.
const CircularSentinel = "[Circular]"

// Canonical produces a deterministic string form of a raw value, suitable for
// keying uniqueness sets. Object keys are emitted in sorted order so two maps
// with the same entries always serialize identically, and cycles are replaced
// with the circular sentinel instead of recursing forever.
func Canonical(raw interface{}) string {
	var b strings.Builder
	writeCanonical(&b, raw, make(map[uintptr]bool))
	return b.String()
}

func writeCanonical(b *strings.Builder, raw interface{}, seen map[uintptr]bool) {
	if raw == nil {
		b.WriteString("null")
		return
	}

	switch v := raw.(type) {
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case string:
		b.WriteString(strconv.Quote(v))
	case int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int8:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int16:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(v, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case []interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if seen[ptr] {
			b.WriteString(strconv.Quote(CircularSentinel))
			return
		}
		seen[ptr] = true
		b.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, elem, seen)
		}
		b.WriteByte(']')
		delete(seen, ptr)
	case map[string]interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if seen[ptr] {
			b.WriteString(strconv.Quote(CircularSentinel))
			return
		}
		seen[ptr] = true
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeCanonical(b, v[k], seen)
		}
		b.WriteByte('}')
		delete(seen, ptr)
	default:
		// Unknown shapes fall back to the tagged-variant string form
		b.WriteString(strconv.Quote(Of(v).Str))
	}
}
