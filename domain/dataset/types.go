package dataset

import "sort"

// Record is one loosely-typed row: a key-value map with heterogeneous keys
// allowed across records. Values are whatever a decoder produced (JSON
// scalars, nested maps/slices, raw cell strings).
type Record map[string]interface{}

// Keys returns the union of keys across records. Keys appear in the order of
// the record that introduced them, and keys introduced by the same record are
// sorted, so the result is deterministic for a given record sequence.
func Keys(records []Record) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)
	for _, rec := range records {
		fresh := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		keys = append(keys, fresh...)
	}
	return keys
}

// Sample returns the leading slice of records bounded by limit. The cap
// bounds worst-case latency on large datasets; callers that need full-table
// coverage raise the limit explicitly.
func Sample(records []Record, limit int) []Record {
	if limit <= 0 || limit >= len(records) {
		return records
	}
	return records[:limit]
}

// FieldValues collects the value of one key across records, with a nil entry
// for every record where the key is absent or null. Absent and null are
// equivalent for completeness accounting.
func FieldValues(records []Record, key string) []interface{} {
	values := make([]interface{}, len(records))
	for i, rec := range records {
		if v, ok := rec[key]; ok {
			values[i] = v
		}
	}
	return values
}
