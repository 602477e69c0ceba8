package validate

import (
	"fmt"
	"math"
	"strings"

	"schemalens/domain/dataset"
	"schemalens/domain/quality"
	"schemalens/domain/schema"
	"schemalens/domain/value"
	"schemalens/internal"
	"schemalens/internal/detect"
)

// Config defines the validation parameters.
type Config struct {
	SampleSize         int
	DetectOutliers     bool
	ValidateReferences bool
	DetectSpecialTypes bool
	CustomRules        []quality.CustomRule
}

// DefaultConfig returns the validator defaults
func DefaultConfig() Config {
	return Config{
		SampleSize:         1000,
		DetectOutliers:     true,
		ValidateReferences: false,
		DetectSpecialTypes: true,
	}
}

// FieldTally holds the validation-pass counters for one field.
type FieldTally struct {
	Field          string
	TotalCount     int
	NullCount      int
	UniqueCount    int
	ValidCount     int
	InvalidCount   int
	TypeMatchCount int
	OutlierCount   int
	IssueTypes     map[quality.IssueType]int
}

// Outcome is everything the validator hands to the dimension scorer.
type Outcome struct {
	Tallies            map[string]*FieldTally
	Accumulators       map[string]FieldAccumulator
	Issues             []quality.Issue
	RecordCount        int
	SampledRecordCount int
}

// Validator checks sampled records against a schema over two passes.
type Validator struct {
	log *internal.Logger
}

// NewValidator creates a quality validator
func NewValidator(log *internal.Logger) *Validator {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Validator{log: log}
}

// Run performs the distribution pass and the validation pass over the
// sampled records, returning per-field tallies and every triggered issue.
func (v *Validator) Run(records []dataset.Record, sch *schema.DatasetSchema, cfg Config) *Outcome {
	sample := dataset.Sample(records, cfg.SampleSize)

	accs := distributionPass(sample, sch)

	out := &Outcome{
		Tallies:            make(map[string]*FieldTally, len(sch.Fields)),
		Accumulators:       accs,
		Issues:             make([]quality.Issue, 0),
		RecordCount:        len(records),
		SampledRecordCount: len(sample),
	}

	for _, field := range sch.Fields {
		acc := accs[field.Name]
		tally := &FieldTally{
			Field:       field.Name,
			TotalCount:  len(sample),
			NullCount:   acc.NullCount,
			UniqueCount: acc.UniqueCount,
			IssueTypes:  make(map[quality.IssueType]int),
		}
		out.Tallies[field.Name] = tally

		for idx, rec := range sample {
			raw, present := rec[field.Name]
			issues := v.checkValue(&field, acc, raw, present, idx, cfg, tally)
			for _, issue := range issues {
				tally.IssueTypes[issue.Type]++
			}
			out.Issues = append(out.Issues, issues...)
		}
	}

	for idx, rec := range sample {
		out.Issues = append(out.Issues, v.applyCustomRules(rec, idx, cfg.CustomRules)...)
	}
	if cfg.ValidateReferences {
		out.Issues = append(out.Issues, checkReferences(sample)...)
	}
	return out
}

// checkValue runs the per-value rules in order. A missing required value
// stops further checks for that value; the remaining rules guard themselves
// on value shape.
func (v *Validator) checkValue(field *schema.FieldSchema, acc FieldAccumulator, raw interface{}, present bool, idx int, cfg Config, tally *FieldTally) []quality.Issue {
	issues := make([]quality.Issue, 0, 1)

	if !present || raw == nil {
		if field.Required {
			issues = append(issues, quality.Issue{
				Type:        quality.IssueMissingRequired,
				Severity:    quality.SeverityHigh,
				Dimension:   quality.DimCompleteness,
				Field:       field.Name,
				RecordIndex: intPtr(idx),
				Message:     fmt.Sprintf("required field %q is missing", field.Name),
			})
		}
		return issues
	}

	invalid := false

	typeMatched := matchesDeclaredType(raw, field.Type)
	if typeMatched {
		tally.TypeMatchCount++
	} else {
		invalid = true
		issues = append(issues, quality.Issue{
			Type:        quality.IssueTypeMismatch,
			Severity:    quality.SeverityMedium,
			Dimension:   quality.DimValidity,
			Field:       field.Name,
			RecordIndex: intPtr(idx),
			Message:     fmt.Sprintf("field %q expected type %s, got %s", field.Name, field.Type, value.Of(raw).Kind),
		})
	}

	if typeMatched && value.Of(raw).Kind == value.KindString {
		if issue := checkPattern(field, raw, idx); issue != nil {
			invalid = true
			issues = append(issues, *issue)
		}
	}

	if field.Type.IsNumericFamily() {
		if issue := checkRange(field, raw, idx); issue != nil {
			invalid = true
			issues = append(issues, *issue)
		}
		if cfg.DetectOutliers && acc.StdDev > 0 {
			if issue := checkOutlier(field, acc, raw, idx); issue != nil {
				tally.OutlierCount++
				issues = append(issues, *issue)
			}
		}
	}

	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		issues = append(issues, quality.Issue{
			Type:        quality.IssueEmptyValue,
			Severity:    quality.SeverityLow,
			Dimension:   quality.DimCompleteness,
			Field:       field.Name,
			RecordIndex: intPtr(idx),
			Message:     fmt.Sprintf("field %q is an empty string", field.Name),
		})
	}

	if invalid {
		tally.InvalidCount++
	} else {
		tally.ValidCount++
	}
	return issues
}

// matchesDeclaredType applies the same tolerant coercions the detector uses:
// numeric strings count as numeric, "true"/"false" as boolean, and any
// string satisfies a specialized string type (the format itself is the
// pattern rule's concern).
func matchesDeclaredType(raw interface{}, declared schema.FieldType) bool {
	v := value.Of(raw)
	switch declared {
	case schema.TypeUnknown, schema.TypeNull:
		return true
	case schema.TypeBoolean:
		return detect.Matches(raw, schema.TypeBoolean)
	case schema.TypeInteger:
		return detect.Matches(raw, schema.TypeInteger)
	case schema.TypeNumber:
		return v.Kind == value.KindInt || v.Kind == value.KindFloat || detect.Matches(raw, schema.TypeNumber)
	case schema.TypeCurrency, schema.TypePercentage:
		_, ok := detect.ParseNumeric(raw)
		return ok
	case schema.TypeArray:
		return v.Kind == value.KindArray
	case schema.TypeObject:
		return v.Kind == value.KindObject
	default:
		// Every remaining type is a string refinement
		return v.Kind == value.KindString
	}
}

// patternTypes are the declared types whose string values get a format check.
var patternTypes = map[schema.FieldType]bool{
	schema.TypeEmail: true,
	schema.TypeURL:   true,
	schema.TypeDate:  true,
	schema.TypePhone: true,
}

func checkPattern(field *schema.FieldSchema, raw interface{}, idx int) *quality.Issue {
	if !patternTypes[field.Type] {
		return nil
	}
	if detect.Matches(raw, field.Type) {
		return nil
	}
	return &quality.Issue{
		Type:        quality.IssuePatternViolation,
		Severity:    quality.SeverityMedium,
		Dimension:   quality.DimConformity,
		Field:       field.Name,
		RecordIndex: intPtr(idx),
		Message:     fmt.Sprintf("field %q value does not match the %s format", field.Name, field.Type),
	}
}

func checkRange(field *schema.FieldSchema, raw interface{}, idx int) *quality.Issue {
	if field.Statistics == nil || field.Statistics.Numeric == nil {
		return nil
	}
	f, ok := detect.ParseNumeric(raw)
	if !ok {
		return nil
	}
	ns := field.Statistics.Numeric
	if f >= ns.Min && f <= ns.Max {
		return nil
	}
	return &quality.Issue{
		Type:        quality.IssueRangeViolation,
		Severity:    quality.SeverityMedium,
		Dimension:   quality.DimValidity,
		Field:       field.Name,
		RecordIndex: intPtr(idx),
		Message:     fmt.Sprintf("field %q value %g outside observed range [%g, %g]", field.Name, f, ns.Min, ns.Max),
	}
}

func checkOutlier(field *schema.FieldSchema, acc FieldAccumulator, raw interface{}, idx int) *quality.Issue {
	f, ok := detect.ParseNumeric(raw)
	if !ok {
		return nil
	}
	z := math.Abs((f - acc.Mean) / acc.StdDev)
	if z <= 3 {
		return nil
	}
	return &quality.Issue{
		Type:        quality.IssueOutlier,
		Severity:    quality.SeverityLow,
		Dimension:   quality.DimAccuracy,
		Field:       field.Name,
		RecordIndex: intPtr(idx),
		Message:     fmt.Sprintf("field %q value %g is %.1f standard deviations from the mean", field.Name, f, z),
	}
}

// applyCustomRules runs caller-supplied record-level rules. A panic inside a
// rule is contained: the rule is skipped for that record and logged.
func (v *Validator) applyCustomRules(rec dataset.Record, idx int, rules []quality.CustomRule) []quality.Issue {
	issues := make([]quality.Issue, 0)
	for _, rule := range rules {
		if rule.Validate == nil {
			continue
		}
		ok, msg := v.runRule(rule, rec)
		if ok {
			continue
		}
		severity := rule.Severity
		if severity == "" {
			severity = quality.SeverityMedium
		}
		dim := rule.Dimension
		if dim == "" {
			dim = quality.DimValidity
		}
		if msg == "" {
			msg = fmt.Sprintf("custom rule %q failed", rule.Name)
		}
		issues = append(issues, quality.Issue{
			Type:        quality.IssueCustomRuleViolation,
			Severity:    severity,
			Dimension:   dim,
			RecordIndex: intPtr(idx),
			Message:     msg,
		})
	}
	return issues
}

func (v *Validator) runRule(rule quality.CustomRule, rec dataset.Record) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Warn("custom rule %q panicked: %v", rule.Name, r)
			ok, msg = true, ""
		}
	}()
	return rule.Validate(rec)
}

// referenceKeys are the self-reference fields checked against the observed
// id set.
var referenceKeys = []string{"parentId", "parent_id"}

// checkReferences verifies that parent-id style self-references resolve to
// an existing record id within the sample.
func checkReferences(sample []dataset.Record) []quality.Issue {
	ids := make(map[string]bool, len(sample))
	for _, rec := range sample {
		if id, ok := rec["id"]; ok && id != nil {
			ids[value.Canonical(id)] = true
		}
	}

	issues := make([]quality.Issue, 0)
	for idx, rec := range sample {
		for _, key := range referenceKeys {
			parent, ok := rec[key]
			if !ok || parent == nil {
				continue
			}
			if ids[value.Canonical(parent)] {
				continue
			}
			issues = append(issues, quality.Issue{
				Type:        quality.IssueReferenceViolation,
				Severity:    quality.SeverityHigh,
				Dimension:   quality.DimIntegrity,
				Field:       key,
				RecordIndex: intPtr(idx),
				Message:     fmt.Sprintf("%s does not resolve to an existing record id", key),
			})
		}
	}
	return issues
}

func intPtr(i int) *int {
	return &i
}
