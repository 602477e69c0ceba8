package quality

import (
	"time"

	"schemalens/domain/dataset"
)

// IssueType categorizes a quality finding.
type IssueType string

const (
	IssueMissingRequired     IssueType = "missing_required"
	IssueTypeMismatch        IssueType = "type_mismatch"
	IssuePatternViolation    IssueType = "pattern_violation"
	IssueRangeViolation      IssueType = "range_violation"
	IssueOutlier             IssueType = "outlier"
	IssueEmptyValue          IssueType = "empty_value"
	IssueReferenceViolation  IssueType = "reference_violation"
	IssueCustomRuleViolation IssueType = "custom_rule_violation"
)

// Severity ranks how much an issue matters.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Dimension is one independent axis of the quality model.
type Dimension string

const (
	DimCompleteness Dimension = "completeness"
	DimAccuracy     Dimension = "accuracy"
	DimConsistency  Dimension = "consistency"
	DimValidity     Dimension = "validity"
	DimUniqueness   Dimension = "uniqueness"
	DimIntegrity    Dimension = "integrity"
	DimConformity   Dimension = "conformity"
	DimReliability  Dimension = "reliability"
)

// Issue is one immutable quality finding produced during validation.
type Issue struct {
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Dimension   Dimension `json:"dimension"`
	Field       string    `json:"field,omitempty"`
	RecordIndex *int      `json:"record_index,omitempty"`
	Message     string    `json:"message"`
}

// FieldMetrics are the per-field counters and ratios behind the field score.
// Every ratio is clamped to [0,1] and TotalCount always equals the sampled
// record count.
type FieldMetrics struct {
	Field           string            `json:"field"`
	TotalCount      int               `json:"total_count"`
	NullCount       int               `json:"null_count"`
	ValidCount      int               `json:"valid_count"`
	InvalidCount    int               `json:"invalid_count"`
	UniqueCount     int               `json:"unique_count"`
	Completeness    float64           `json:"completeness"`
	Validity        float64           `json:"validity"`
	TypeConsistency float64           `json:"type_consistency"`
	Uniqueness      float64           `json:"uniqueness"`
	IssueTypes      map[IssueType]int `json:"issue_types,omitempty"`
	QualityScore    float64           `json:"quality_score"`
}

// Report is the full outcome of a quality analysis call.
type Report struct {
	ReportID           string                  `json:"report_id"`
	OverallQuality     float64                 `json:"overall_quality"`
	Grade              Grade                   `json:"grade"`
	Dimensions         map[Dimension]float64   `json:"dimensions"`
	FieldMetrics       map[string]FieldMetrics `json:"field_metrics"`
	IssueCount         int                     `json:"issue_count"`
	Issues             []Issue                 `json:"issues"`
	IssuesBySeverity   map[Severity]int        `json:"issues_by_severity"`
	RecordCount        int                     `json:"record_count"`
	SampledRecordCount int                     `json:"sampled_record_count"`
	AnalyzedAt         time.Time               `json:"analyzed_at"`
	DurationMs         int64                   `json:"duration_ms"`
}

// CustomRule is a caller-supplied record-level validation. Validate returns
// false plus a message when the record violates the rule; a panic inside
// Validate is contained and the rule is skipped for that record.
type CustomRule struct {
	Name      string
	Severity  Severity
	Dimension Dimension
	Validate  func(rec dataset.Record) (bool, string)
}

// Grade is the letter grade mapped from the overall score.
type Grade string

// gradeBand maps a score floor to its letter grade. Bands are checked top
// down, so order matters.
type gradeBand struct {
	floor float64
	grade Grade
}

var gradeBands = []gradeBand{
	{0.97, "A+"},
	{0.93, "A"},
	{0.90, "A-"},
	{0.87, "B+"},
	{0.83, "B"},
	{0.80, "B-"},
	{0.77, "C+"},
	{0.73, "C"},
	{0.70, "C-"},
	{0.60, "D"},
}

// GradeFor maps an overall quality score onto the fixed 11-band grade table,
// A+ (>=0.97) down to F (<0.60).
func GradeFor(score float64) Grade {
	for _, band := range gradeBands {
		if score >= band.floor {
			return band.grade
		}
	}
	return "F"
}
