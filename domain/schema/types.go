package schema

import "time"

// FieldType is the closed enumeration of inferred field types.
type FieldType string

const (
	TypeNull       FieldType = "null"
	TypeBoolean    FieldType = "boolean"
	TypeInteger    FieldType = "integer"
	TypeNumber     FieldType = "number"
	TypeDate       FieldType = "date"
	TypeDateTime   FieldType = "datetime"
	TypeTime       FieldType = "time"
	TypeEmail      FieldType = "email"
	TypeURL        FieldType = "url"
	TypeCurrency   FieldType = "currency"
	TypePercentage FieldType = "percentage"
	TypeIPAddress  FieldType = "ip_address"
	TypePhone      FieldType = "phone_number"
	TypePostalCode FieldType = "postal_code"
	TypeIdentifier FieldType = "identifier"
	TypeString     FieldType = "string"
	TypeArray      FieldType = "array"
	TypeObject     FieldType = "object"
	TypeUnknown    FieldType = "unknown"
)

// DetectionOrder fixes the predicate enumeration order. Confidence ties break
// toward the earlier entry, so specialized string formats are listed before
// the generic string type.
var DetectionOrder = []FieldType{
	TypeNull,
	TypeBoolean,
	TypeInteger,
	TypeNumber,
	TypeDate,
	TypeDateTime,
	TypeTime,
	TypeEmail,
	TypeURL,
	TypeCurrency,
	TypePercentage,
	TypeIPAddress,
	TypePhone,
	TypePostalCode,
	TypeIdentifier,
	TypeString,
	TypeArray,
	TypeObject,
}

// SpecializedStringTypes are the format-based refinements of string. They are
// the types whose high confidence caps the generic string score.
var SpecializedStringTypes = []FieldType{
	TypeDate,
	TypeDateTime,
	TypeTime,
	TypeEmail,
	TypeURL,
	TypeCurrency,
	TypePercentage,
	TypeIPAddress,
	TypePhone,
	TypePostalCode,
}

// IsNumericFamily reports whether values of this type carry numeric content
func (t FieldType) IsNumericFamily() bool {
	switch t {
	case TypeInteger, TypeNumber, TypeCurrency, TypePercentage:
		return true
	}
	return false
}

// IsStringFamily reports whether values of this type are plain text
func (t FieldType) IsStringFamily() bool {
	switch t {
	case TypeString, TypeEmail, TypeURL, TypeIdentifier, TypePhone, TypePostalCode:
		return true
	}
	return false
}

// IsTemporal reports whether values of this type are calendar-based
func (t FieldType) IsTemporal() bool {
	switch t {
	case TypeDate, TypeDateTime, TypeTime:
		return true
	}
	return false
}

// Cardinality buckets a field's unique/non-null ratio.
type Cardinality string

const (
	CardinalityHigh    Cardinality = "high"
	CardinalityMedium  Cardinality = "medium"
	CardinalityLow     Cardinality = "low"
	CardinalityUnknown Cardinality = "unknown"
)

// ClassifyCardinality buckets the unique-value ratio: >0.9 high, >0.5 medium,
// else low. A field with no non-null values has unknown cardinality.
func ClassifyCardinality(uniqueCount, nonNullCount int) Cardinality {
	if nonNullCount == 0 {
		return CardinalityUnknown
	}
	ratio := float64(uniqueCount) / float64(nonNullCount)
	switch {
	case ratio > 0.9:
		return CardinalityHigh
	case ratio > 0.5:
		return CardinalityMedium
	default:
		return CardinalityLow
	}
}

// TypeConfidence pairs a candidate type with its confidence score.
type TypeConfidence struct {
	Type       FieldType `json:"type"`
	Confidence float64   `json:"confidence"`
}

// NumericStatistics are aggregates for the numeric family. Min/max/mean/
// median/std-dev come from the tolerant float parse of each value; skewness
// and kurtosis describe the distribution shape.
type NumericStatistics struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Sum           float64 `json:"sum"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	StdDev        float64 `json:"std_dev"`
	Skewness      float64 `json:"skewness,omitempty"`
	Kurtosis      float64 `json:"kurtosis,omitempty"`
	ZeroCount     int     `json:"zero_count"`
	NegativeCount int     `json:"negative_count"`
}

// StringStatistics are aggregates for the string family
type StringStatistics struct {
	MinLength       int     `json:"min_length"`
	MaxLength       int     `json:"max_length"`
	AvgLength       float64 `json:"avg_length"`
	HasNumbers      bool    `json:"has_numbers"`
	HasSpecialChars bool    `json:"has_special_chars"`
}

// TemporalStatistics are aggregates for date/datetime fields
type TemporalStatistics struct {
	Min     time.Time `json:"min"`
	Max     time.Time `json:"max"`
	DaySpan int       `json:"day_span"`
}

// SizeStatistics are aggregates for array element counts or object
// own-property counts
type SizeStatistics struct {
	Min int     `json:"min"`
	Max int     `json:"max"`
	Avg float64 `json:"avg"`
}

// ValueCount is one entry of a field's most frequent values
type ValueCount struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// FieldStatistics bundles the type-specific aggregates for one field. Only
// the bundle matching the field's type family is populated.
type FieldStatistics struct {
	Numeric   *NumericStatistics  `json:"numeric,omitempty"`
	String    *StringStatistics   `json:"string,omitempty"`
	Temporal  *TemporalStatistics `json:"temporal,omitempty"`
	Array     *SizeStatistics     `json:"array,omitempty"`
	Object    *SizeStatistics     `json:"object,omitempty"`
	TopValues []ValueCount        `json:"top_values,omitempty"`
}

// FieldSchema describes one distinct key observed across sampled records.
// Built once per inference call from an immutable sample and never mutated
// after construction.
type FieldSchema struct {
	Name                  string           `json:"name"`
	Type                  FieldType        `json:"type"`
	Confidence            float64          `json:"confidence"`
	Required              bool             `json:"required"`
	Nullable              bool             `json:"nullable"`
	Cardinality           Cardinality      `json:"cardinality"`
	IsPrimaryKeyCandidate bool             `json:"is_primary_key_candidate"`
	AlternativeTypes      []TypeConfidence `json:"alternative_types,omitempty"`
	Statistics            *FieldStatistics `json:"statistics,omitempty"`

	TotalCount   int     `json:"total_count"`
	NonNullCount int     `json:"non_null_count"`
	NullPercent  float64 `json:"null_percent"`
	UniqueCount  int     `json:"unique_count"`

	// Error records a per-field processing failure; the entry degrades to
	// unknown type instead of failing the whole schema.
	Error string `json:"error,omitempty"`
}

// DatasetSchema is the inferred structural schema of a record sample.
type DatasetSchema struct {
	Fields             []FieldSchema `json:"fields"`
	RecordCount        int           `json:"record_count"`
	SampledRecordCount int           `json:"sampled_record_count"`
	GeneratedAt        time.Time     `json:"generated_at"`
}

// HasCompleteSchema reports whether any field was inferred
func (s *DatasetSchema) HasCompleteSchema() bool {
	return len(s.Fields) > 0
}

// Field looks up a field schema by name
func (s *DatasetSchema) Field(name string) (*FieldSchema, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}
