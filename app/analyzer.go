package app

import (
	"time"

	"schemalens/domain/dataset"
	"schemalens/domain/quality"
	"schemalens/domain/schema"
	"schemalens/internal"
	"schemalens/internal/errors"
	"schemalens/internal/export"
	"schemalens/internal/schemabuild"
	"schemalens/internal/score"
	"schemalens/internal/validate"
)

// Options are the caller-facing analysis parameters. Zero-value fields are
// not meaningful; start from DefaultOptions and override.
type Options struct {
	SampleSize          int
	ConfidenceThreshold float64
	DetectSpecialTypes  bool
	IncludeStatistics   bool
	DetectOutliers      bool
	ValidateReferences  bool
	CustomRules         []quality.CustomRule
}

// DefaultOptions returns the analyzer defaults
func DefaultOptions() Options {
	return Options{
		SampleSize:          1000,
		ConfidenceThreshold: 0.7,
		DetectSpecialTypes:  true,
		IncludeStatistics:   true,
		DetectOutliers:      true,
		ValidateReferences:  false,
	}
}

func (o Options) validate() error {
	if o.SampleSize <= 0 {
		return errors.InvalidInput("sampleSize must be positive")
	}
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return errors.InvalidInput("confidenceThreshold must be in [0,1]")
	}
	return nil
}

// Analyzer is the single entry point for schema inference, quality analysis
// and schema export. Every call is a pure function of its inputs: no state
// is shared between calls, so one Analyzer is safe for concurrent use on
// different inputs.
type Analyzer struct {
	log       *internal.Logger
	builder   *schemabuild.Builder
	validator *validate.Validator
	scorer    *score.Scorer
	exporter  *export.Exporter
}

// NewAnalyzer creates an analyzer with the default scoring weights
func NewAnalyzer(log *internal.Logger) *Analyzer {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Analyzer{
		log:       log,
		builder:   schemabuild.NewBuilder(log),
		validator: validate.NewValidator(log),
		scorer:    score.NewScorer(),
		exporter:  export.NewExporter(log),
	}
}

// InferSchema derives a structural schema from a record sample. Empty input
// yields an empty, well-formed schema; nil input is a validation failure.
func (a *Analyzer) InferSchema(records []dataset.Record, opts Options) (*schema.DatasetSchema, error) {
	if records == nil {
		return nil, errors.InvalidInput("records are required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return a.builder.Infer(records, schemabuild.Config{
		SampleSize:          opts.SampleSize,
		ConfidenceThreshold: opts.ConfidenceThreshold,
		DetectSpecialTypes:  opts.DetectSpecialTypes,
		IncludeStatistics:   opts.IncludeStatistics,
	}), nil
}

// AnalyzeDataQuality scores sampled records against a schema. When sch is
// nil a schema is inferred from the same records first.
func (a *Analyzer) AnalyzeDataQuality(records []dataset.Record, sch *schema.DatasetSchema, opts Options) (*quality.Report, error) {
	if records == nil {
		return nil, errors.InvalidInput("records are required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	startedAt := time.Now()

	if sch == nil {
		inferred, err := a.InferSchema(records, opts)
		if err != nil {
			return nil, err
		}
		sch = inferred
	}

	outcome := a.validator.Run(records, sch, validate.Config{
		SampleSize:         opts.SampleSize,
		DetectOutliers:     opts.DetectOutliers,
		ValidateReferences: opts.ValidateReferences,
		DetectSpecialTypes: opts.DetectSpecialTypes,
		CustomRules:        opts.CustomRules,
	})

	return a.scorer.BuildReport(outcome, sch, startedAt), nil
}

// ConvertToSchemaDefinition exports an inferred schema as an interchange
// schema document.
func (a *Analyzer) ConvertToSchemaDefinition(sch *schema.DatasetSchema, opts export.Options) (map[string]interface{}, error) {
	return a.exporter.Convert(sch, opts)
}

// GetSchemaDescription renders a human-readable summary of a schema.
func (a *Analyzer) GetSchemaDescription(sch *schema.DatasetSchema) string {
	return export.Describe(sch)
}
