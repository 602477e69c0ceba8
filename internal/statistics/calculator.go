package statistics

import (
	"sort"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/stat"

	"schemalens/domain/schema"
	"schemalens/domain/value"
	"schemalens/internal/detect"
)

// topValueLimit caps the most-frequent-values list per field.
const topValueLimit = 5

// Compute builds the type-specific aggregate bundle for one field. Values is
// the full per-record slice (nils included); malformed individual values are
// skipped, never aborting the whole field.
func Compute(values []interface{}, fieldType schema.FieldType) *schema.FieldStatistics {
	fs := &schema.FieldStatistics{}

	switch {
	case fieldType.IsNumericFamily():
		fs.Numeric = computeNumeric(values)
	case fieldType.IsStringFamily():
		fs.String = computeString(values)
	case fieldType.IsTemporal():
		fs.Temporal = computeTemporal(values)
	case fieldType == schema.TypeArray:
		fs.Array = computeSizes(values, arraySize)
	case fieldType == schema.TypeObject:
		fs.Object = computeSizes(values, objectSize)
	}

	fs.TopValues = computeTopValues(values)

	if fs.Numeric == nil && fs.String == nil && fs.Temporal == nil &&
		fs.Array == nil && fs.Object == nil && len(fs.TopValues) == 0 {
		return nil
	}
	return fs
}

func computeNumeric(values []interface{}) *schema.NumericStatistics {
	xs := make([]float64, 0, len(values))
	zeroCount, negativeCount := 0, 0
	for _, raw := range values {
		if raw == nil {
			continue
		}
		f, ok := detect.ParseNumeric(raw)
		if !ok {
			continue
		}
		xs = append(xs, f)
		if f == 0 {
			zeroCount++
		}
		if f < 0 {
			negativeCount++
		}
	}
	if len(xs) == 0 {
		return nil
	}

	min, _ := stats.Min(xs)
	max, _ := stats.Max(xs)
	sum, _ := stats.Sum(xs)
	mean, _ := stats.Mean(xs)
	median, _ := stats.Median(xs)

	// Population formula: zero for a single observation
	stdDev := 0.0
	if len(xs) > 1 {
		stdDev, _ = stats.StandardDeviationPopulation(xs)
	}

	ns := &schema.NumericStatistics{
		Min:           min,
		Max:           max,
		Sum:           sum,
		Mean:          mean,
		Median:        median,
		StdDev:        stdDev,
		ZeroCount:     zeroCount,
		NegativeCount: negativeCount,
	}
	if len(xs) >= 3 && stdDev > 0 {
		ns.Skewness = stat.Skew(xs, nil)
	}
	if len(xs) >= 4 && stdDev > 0 {
		ns.Kurtosis = stat.ExKurtosis(xs, nil)
	}
	return ns
}

func computeString(values []interface{}) *schema.StringStatistics {
	minLen, maxLen, total, count := 0, 0, 0, 0
	hasNumbers, hasSpecial := false, false
	for _, raw := range values {
		v := value.Of(raw)
		if v.Kind != value.KindString {
			continue
		}
		n := utf8.RuneCountInString(v.Str)
		if count == 0 || n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
		total += n
		count++
		if !hasNumbers && containsAnyDigit(v.Str) {
			hasNumbers = true
		}
		if !hasSpecial && containsSpecial(v.Str) {
			hasSpecial = true
		}
	}
	if count == 0 {
		return nil
	}
	return &schema.StringStatistics{
		MinLength:       minLen,
		MaxLength:       maxLen,
		AvgLength:       float64(total) / float64(count),
		HasNumbers:      hasNumbers,
		HasSpecialChars: hasSpecial,
	}
}

func computeTemporal(values []interface{}) *schema.TemporalStatistics {
	ts := &schema.TemporalStatistics{}
	count := 0
	for _, raw := range values {
		if raw == nil {
			continue
		}
		t, ok := detect.ParseTemporal(raw)
		if !ok {
			continue
		}
		if count == 0 || t.Before(ts.Min) {
			ts.Min = t
		}
		if count == 0 || t.After(ts.Max) {
			ts.Max = t
		}
		count++
	}
	if count == 0 {
		return nil
	}
	ts.DaySpan = int(ts.Max.Sub(ts.Min).Hours() / 24)
	return ts
}

func arraySize(v value.Value) (int, bool) {
	if v.Kind != value.KindArray {
		return 0, false
	}
	return len(v.Array), true
}

func objectSize(v value.Value) (int, bool) {
	if v.Kind != value.KindObject {
		return 0, false
	}
	return len(v.Object), true
}

func computeSizes(values []interface{}, size func(value.Value) (int, bool)) *schema.SizeStatistics {
	min, max, total, count := 0, 0, 0, 0
	for _, raw := range values {
		n, ok := size(value.Of(raw))
		if !ok {
			continue
		}
		if count == 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
		total += n
		count++
	}
	if count == 0 {
		return nil
	}
	return &schema.SizeStatistics{Min: min, Max: max, Avg: float64(total) / float64(count)}
}

// computeTopValues counts non-null values by canonical form and keeps the
// most frequent few. Ties break on value order so the list is deterministic.
func computeTopValues(values []interface{}) []schema.ValueCount {
	counts := make(map[string]int)
	nonNull := 0
	for _, raw := range values {
		if raw == nil {
			continue
		}
		counts[cast.ToString(raw)]++
		nonNull++
	}
	if nonNull == 0 {
		return nil
	}

	top := make([]schema.ValueCount, 0, len(counts))
	for v, c := range counts {
		top = append(top, schema.ValueCount{Value: v, Count: c, Ratio: float64(c) / float64(nonNull)})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > topValueLimit {
		top = top[:topValueLimit]
	}
	return top
}

func containsAnyDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func containsSpecial(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
		default:
			return true
		}
	}
	return false
}
