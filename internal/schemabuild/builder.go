package schemabuild

import (
	"fmt"
	"strings"
	"time"

	"schemalens/domain/dataset"
	"schemalens/domain/schema"
	"schemalens/domain/value"
	"schemalens/internal"
	"schemalens/internal/detect"
	"schemalens/internal/statistics"
)

// Config defines the inference parameters.
type Config struct {
	SampleSize          int     `json:"sample_size"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	DetectSpecialTypes  bool    `json:"detect_special_types"`
	IncludeStatistics   bool    `json:"include_statistics"`
}

// DefaultConfig returns the analyzer defaults
func DefaultConfig() Config {
	return Config{
		SampleSize:          1000,
		ConfidenceThreshold: 0.7,
		DetectSpecialTypes:  true,
		IncludeStatistics:   true,
	}
}

// Builder assembles per-field schema entries into a dataset-level schema.
type Builder struct {
	log *internal.Logger
}

// NewBuilder creates a schema builder
func NewBuilder(log *internal.Logger) *Builder {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Builder{log: log}
}

// Infer builds a DatasetSchema from a record sample. Empty input is not an
// error: it yields a well-formed schema with zeroed counts. Per-field
// failures degrade to an unknown-typed entry instead of failing the call.
func (b *Builder) Infer(records []dataset.Record, cfg Config) *schema.DatasetSchema {
	sample := dataset.Sample(records, cfg.SampleSize)

	out := &schema.DatasetSchema{
		Fields:             make([]schema.FieldSchema, 0),
		RecordCount:        len(records),
		SampledRecordCount: len(sample),
		GeneratedAt:        time.Now().UTC(),
	}

	for _, key := range dataset.Keys(sample) {
		values := dataset.FieldValues(sample, key)
		out.Fields = append(out.Fields, b.buildField(key, values, cfg))
	}
	return out
}

// buildField analyzes one key across the sample. A panic while processing
// the field is contained here so one bad field never invalidates the schema.
func (b *Builder) buildField(name string, values []interface{}, cfg Config) (fs schema.FieldSchema) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("field %q degraded to unknown type: %v", name, r)
			fs = schema.FieldSchema{
				Name:       name,
				Type:       schema.TypeUnknown,
				Confidence: 0,
				TotalCount: len(values),
				Error:      fmt.Sprintf("%v", r),
			}
		}
	}()

	totalCount := len(values)
	nonNullCount := 0
	unique := make(map[string]bool)
	for _, raw := range values {
		if raw == nil {
			continue
		}
		nonNullCount++
		unique[value.Canonical(raw)] = true
	}

	nullPercent := 0.0
	if totalCount > 0 {
		nullPercent = float64(totalCount-nonNullCount) / float64(totalCount)
	}

	res := detect.Aggregate(values, cfg.DetectSpecialTypes)
	cardinality := schema.ClassifyCardinality(len(unique), nonNullCount)

	fs = schema.FieldSchema{
		Name:                  name,
		Type:                  res.Primary.Type,
		Confidence:            res.Primary.Confidence,
		Required:              nullPercent == 0,
		Nullable:              nullPercent > 0,
		Cardinality:           cardinality,
		IsPrimaryKeyCandidate: isPrimaryKeyCandidate(name, res.Primary.Type, cardinality, len(unique), nonNullCount, totalCount),
		AlternativeTypes:      detect.Alternatives(res.Scores, res.Primary.Type, cfg.ConfidenceThreshold),
		TotalCount:            totalCount,
		NonNullCount:          nonNullCount,
		NullPercent:           nullPercent,
		UniqueCount:           len(unique),
	}

	if cfg.IncludeStatistics {
		fs.Statistics = statistics.Compute(values, fs.Type)
	}
	return fs
}

// isPrimaryKeyCandidate requires fully-present, fully-unique values plus an
// identifier signal: the inferred type, high cardinality, or an id-ish name.
func isPrimaryKeyCandidate(name string, t schema.FieldType, c schema.Cardinality, uniqueCount, nonNullCount, totalCount int) bool {
	if totalCount == 0 || uniqueCount != nonNullCount || nonNullCount != totalCount {
		return false
	}
	return t == schema.TypeIdentifier ||
		c == schema.CardinalityHigh ||
		strings.Contains(strings.ToLower(name), "id")
}
