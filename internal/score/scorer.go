package score

import (
	"time"

	"github.com/google/uuid"

	"schemalens/domain/quality"
	"schemalens/domain/schema"
	"schemalens/internal/validate"
)

// FieldWeights are the per-field score weights. Empirically chosen constants
// preserved as configuration defaults; changing them silently would change
// every quality score and grade boundary.
type FieldWeights struct {
	CompletenessRequired float64
	CompletenessOptional float64
	Validity             float64
	TypeConsistency      float64
	OutlierScore         float64
	UniquenessPK         float64
	UniquenessOther      float64
}

// DefaultFieldWeights returns the fixed field-score weighting
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		CompletenessRequired: 0.3,
		CompletenessOptional: 0.1,
		Validity:             0.3,
		TypeConsistency:      0.2,
		OutlierScore:         0.1,
		UniquenessPK:         0.3,
		UniquenessOther:      0.1,
	}
}

// DimensionWeights are the dataset-level weights behind the overall score.
type DimensionWeights struct {
	Completeness float64
	Validity     float64
	Consistency  float64
	Uniqueness   float64
	Integrity    float64
	Conformity   float64
}

// DefaultDimensionWeights returns the fixed overall-score weighting
func DefaultDimensionWeights() DimensionWeights {
	return DimensionWeights{
		Completeness: 0.25,
		Validity:     0.25,
		Consistency:  0.15,
		Uniqueness:   0.10,
		Integrity:    0.15,
		Conformity:   0.10,
	}
}

// Scorer aggregates validation outcomes into dimension scores and a report.
type Scorer struct {
	fieldWeights FieldWeights
	dimWeights   DimensionWeights
}

// NewScorer creates a scorer with the default weights
func NewScorer() *Scorer {
	return &Scorer{
		fieldWeights: DefaultFieldWeights(),
		dimWeights:   DefaultDimensionWeights(),
	}
}

// NewScorerWithWeights creates a scorer with caller-supplied weights
func NewScorerWithWeights(fw FieldWeights, dw DimensionWeights) *Scorer {
	return &Scorer{fieldWeights: fw, dimWeights: dw}
}

// BuildReport converts a validation outcome into the final quality report.
func (s *Scorer) BuildReport(out *validate.Outcome, sch *schema.DatasetSchema, startedAt time.Time) *quality.Report {
	report := &quality.Report{
		ReportID:           uuid.NewString(),
		Dimensions:         make(map[quality.Dimension]float64, 8),
		FieldMetrics:       make(map[string]quality.FieldMetrics, len(out.Tallies)),
		Issues:             out.Issues,
		IssueCount:         len(out.Issues),
		IssuesBySeverity:   make(map[quality.Severity]int),
		RecordCount:        out.RecordCount,
		SampledRecordCount: out.SampledRecordCount,
		AnalyzedAt:         time.Now().UTC(),
	}
	report.DurationMs = report.AnalyzedAt.Sub(startedAt).Milliseconds()
	for _, issue := range out.Issues {
		report.IssuesBySeverity[issue.Severity]++
	}

	for name, tally := range out.Tallies {
		field, _ := sch.Field(name)
		report.FieldMetrics[name] = s.fieldMetrics(tally, field)
	}

	s.scoreDimensions(report, sch, out)
	return report
}

// fieldMetrics derives the per-field ratios and the weighted field score.
func (s *Scorer) fieldMetrics(tally *validate.FieldTally, field *schema.FieldSchema) quality.FieldMetrics {
	m := quality.FieldMetrics{
		Field:        tally.Field,
		TotalCount:   tally.TotalCount,
		NullCount:    tally.NullCount,
		ValidCount:   tally.ValidCount,
		InvalidCount: tally.InvalidCount,
		UniqueCount:  tally.UniqueCount,
		IssueTypes:   tally.IssueTypes,
	}

	nonNull := tally.TotalCount - tally.NullCount
	m.Completeness = ratioOrFull(nonNull, tally.TotalCount)
	m.Validity = ratioOrFull(tally.ValidCount, nonNull)
	m.TypeConsistency = ratioOrFull(tally.TypeMatchCount, nonNull)

	required := field != nil && field.Required
	pkCandidate := field != nil && field.IsPrimaryKeyCandidate
	if pkCandidate {
		m.Uniqueness = ratioOrFull(tally.UniqueCount, tally.TotalCount)
	} else {
		m.Uniqueness = 1
	}

	outlierScore := 1.0
	if tally.TotalCount > 0 {
		outlierScore = clamp(1 - float64(tally.OutlierCount)/float64(tally.TotalCount))
	}

	w := s.fieldWeights
	completenessWeight := w.CompletenessOptional
	if required {
		completenessWeight = w.CompletenessRequired
	}
	uniquenessWeight := w.UniquenessOther
	if pkCandidate {
		uniquenessWeight = w.UniquenessPK
	}

	weighted := m.Completeness*completenessWeight +
		m.Validity*w.Validity +
		m.TypeConsistency*w.TypeConsistency +
		outlierScore*w.OutlierScore +
		m.Uniqueness*uniquenessWeight
	totalWeight := completenessWeight + w.Validity + w.TypeConsistency + w.OutlierScore + uniquenessWeight

	if totalWeight > 0 {
		m.QualityScore = clamp(weighted / totalWeight)
	}
	return m
}

// scoreDimensions computes the dataset-level dimensions and the weighted
// overall score.
func (s *Scorer) scoreDimensions(report *quality.Report, sch *schema.DatasetSchema, out *validate.Outcome) {
	requiredCompleteness := make([]float64, 0)
	validities := make([]float64, 0, len(report.FieldMetrics))
	consistencies := make([]float64, 0, len(report.FieldMetrics))
	pkUniqueness := make([]float64, 0)

	for _, field := range sch.Fields {
		m, ok := report.FieldMetrics[field.Name]
		if !ok {
			continue
		}
		validities = append(validities, m.Validity)
		consistencies = append(consistencies, m.TypeConsistency)
		if field.Required {
			requiredCompleteness = append(requiredCompleteness, m.Completeness)
		}
		if field.IsPrimaryKeyCandidate {
			pkUniqueness = append(pkUniqueness, m.Uniqueness)
		}
	}

	refViolations, patternViolations, outliers := 0, 0, 0
	for _, issue := range out.Issues {
		switch issue.Type {
		case quality.IssueReferenceViolation:
			refViolations++
		case quality.IssuePatternViolation:
			patternViolations++
		case quality.IssueOutlier:
			outliers++
		}
	}

	dims := report.Dimensions
	dims[quality.DimCompleteness] = meanOrFull(requiredCompleteness)
	dims[quality.DimValidity] = meanOrFull(validities)
	dims[quality.DimConsistency] = meanOrFull(consistencies)
	dims[quality.DimUniqueness] = meanOrFull(pkUniqueness)
	dims[quality.DimIntegrity] = violationScore(refViolations, out.SampledRecordCount)
	dims[quality.DimConformity] = violationScore(patternViolations, out.SampledRecordCount)
	dims[quality.DimAccuracy] = violationScore(outliers, out.SampledRecordCount)

	w := s.dimWeights
	overall := dims[quality.DimCompleteness]*w.Completeness +
		dims[quality.DimValidity]*w.Validity +
		dims[quality.DimConsistency]*w.Consistency +
		dims[quality.DimUniqueness]*w.Uniqueness +
		dims[quality.DimIntegrity]*w.Integrity +
		dims[quality.DimConformity]*w.Conformity
	totalWeight := w.Completeness + w.Validity + w.Consistency + w.Uniqueness + w.Integrity + w.Conformity
	if totalWeight > 0 {
		overall = clamp(overall / totalWeight)
	}

	report.OverallQuality = overall
	dims[quality.DimReliability] = overall
	report.Grade = quality.GradeFor(overall)
}

// ratioOrFull scores a perfect 1 when there is nothing to measure
func ratioOrFull(num, den int) float64 {
	if den <= 0 {
		return 1
	}
	return clamp(float64(num) / float64(den))
}

func meanOrFull(xs []float64) float64 {
	if len(xs) == 0 {
		return 1
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return clamp(sum / float64(len(xs)))
}

func violationScore(violations, sampled int) float64 {
	if sampled <= 0 {
		return 1
	}
	return clamp(1 - float64(violations)/float64(sampled))
}

func clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
