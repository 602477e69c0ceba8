package validate

import (
	"testing"

	"schemalens/domain/dataset"
	"schemalens/domain/quality"
	"schemalens/domain/schema"
)

func fieldOf(name string, t schema.FieldType, required bool) schema.FieldSchema {
	return schema.FieldSchema{Name: name, Type: t, Required: required}
}

func schemaOf(fields ...schema.FieldSchema) *schema.DatasetSchema {
	return &schema.DatasetSchema{Fields: fields}
}

func issuesOfType(issues []quality.Issue, it quality.IssueType) []quality.Issue {
	out := make([]quality.Issue, 0)
	for _, issue := range issues {
		if issue.Type == it {
			out = append(out, issue)
		}
	}
	return out
}

func TestRunFlagsPatternViolation(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("email", schema.TypeEmail, true))
	records := []dataset.Record{
		{"email": "a@b.com"},
		{"email": "not-an-email"},
	}

	out := v.Run(records, sch, DefaultConfig())

	violations := issuesOfType(out.Issues, quality.IssuePatternViolation)
	if len(violations) != 1 {
		t.Fatalf("got %d pattern violations, want 1: %v", len(violations), out.Issues)
	}
	issue := violations[0]
	if issue.RecordIndex == nil || *issue.RecordIndex != 1 {
		t.Errorf("record index = %v, want 1", issue.RecordIndex)
	}
	if issue.Dimension != quality.DimConformity {
		t.Errorf("dimension = %s, want conformity", issue.Dimension)
	}
	if issue.Field != "email" {
		t.Errorf("field = %s, want email", issue.Field)
	}
}

func TestRunFlagsOutlier(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("amount", schema.TypeInteger, true))

	// Ten ones and a thousand: the extreme value sits over three population
	// standard deviations from the mean.
	records := make([]dataset.Record, 0, 11)
	for i := 0; i < 10; i++ {
		records = append(records, dataset.Record{"amount": 1})
	}
	records = append(records, dataset.Record{"amount": 1000})

	out := v.Run(records, sch, DefaultConfig())

	outliers := issuesOfType(out.Issues, quality.IssueOutlier)
	if len(outliers) != 1 {
		t.Fatalf("got %d outliers, want 1: %v", len(outliers), out.Issues)
	}
	if outliers[0].RecordIndex == nil || *outliers[0].RecordIndex != 10 {
		t.Errorf("record index = %v, want 10", outliers[0].RecordIndex)
	}
	if outliers[0].Severity != quality.SeverityLow {
		t.Errorf("severity = %s, want low", outliers[0].Severity)
	}
	if out.Tallies["amount"].OutlierCount != 1 {
		t.Errorf("outlier tally = %d, want 1", out.Tallies["amount"].OutlierCount)
	}
}

func TestRunOutlierDetectionDisabled(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("amount", schema.TypeInteger, true))
	records := make([]dataset.Record, 0, 11)
	for i := 0; i < 10; i++ {
		records = append(records, dataset.Record{"amount": 1})
	}
	records = append(records, dataset.Record{"amount": 1000})

	cfg := DefaultConfig()
	cfg.DetectOutliers = false
	out := v.Run(records, sch, cfg)

	if got := issuesOfType(out.Issues, quality.IssueOutlier); len(got) != 0 {
		t.Errorf("expected no outliers with detection off, got %v", got)
	}
}

func TestRunFlagsMissingRequired(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("name", schema.TypeString, true))
	records := []dataset.Record{
		{"name": "alice"},
		{},
		{"name": nil},
	}

	out := v.Run(records, sch, DefaultConfig())

	missing := issuesOfType(out.Issues, quality.IssueMissingRequired)
	if len(missing) != 2 {
		t.Fatalf("got %d missing-required issues, want 2", len(missing))
	}
	for _, issue := range missing {
		if issue.Severity != quality.SeverityHigh {
			t.Errorf("severity = %s, want high", issue.Severity)
		}
		if issue.Dimension != quality.DimCompleteness {
			t.Errorf("dimension = %s, want completeness", issue.Dimension)
		}
	}
	if out.Tallies["name"].NullCount != 2 {
		t.Errorf("null count = %d, want 2", out.Tallies["name"].NullCount)
	}
}

func TestRunMissingOptionalIsNotAnIssue(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("nickname", schema.TypeString, false))
	records := []dataset.Record{{}, {"nickname": "al"}}

	out := v.Run(records, sch, DefaultConfig())
	if len(out.Issues) != 0 {
		t.Errorf("expected no issues, got %v", out.Issues)
	}
}

func TestRunFlagsTypeMismatch(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("count", schema.TypeInteger, true))
	records := []dataset.Record{
		{"count": 5},
		{"count": "42"},
		{"count": "lots"},
	}

	out := v.Run(records, sch, DefaultConfig())

	mismatches := issuesOfType(out.Issues, quality.IssueTypeMismatch)
	if len(mismatches) != 1 {
		t.Fatalf("got %d type mismatches, want 1 (numeric strings coerce)", len(mismatches))
	}
	if *mismatches[0].RecordIndex != 2 {
		t.Errorf("record index = %d, want 2", *mismatches[0].RecordIndex)
	}

	tally := out.Tallies["count"]
	if tally.TypeMatchCount != 2 {
		t.Errorf("type match count = %d, want 2", tally.TypeMatchCount)
	}
	if tally.ValidCount != 2 || tally.InvalidCount != 1 {
		t.Errorf("valid/invalid = %d/%d, want 2/1", tally.ValidCount, tally.InvalidCount)
	}
}

func TestRunFlagsRangeViolation(t *testing.T) {
	v := NewValidator(nil)
	field := fieldOf("score", schema.TypeInteger, true)
	field.Statistics = &schema.FieldStatistics{
		Numeric: &schema.NumericStatistics{Min: 0, Max: 100},
	}
	sch := schemaOf(field)
	records := []dataset.Record{
		{"score": 50},
		{"score": 150},
	}

	cfg := DefaultConfig()
	cfg.DetectOutliers = false
	out := v.Run(records, sch, cfg)

	violations := issuesOfType(out.Issues, quality.IssueRangeViolation)
	if len(violations) != 1 {
		t.Fatalf("got %d range violations, want 1", len(violations))
	}
	if *violations[0].RecordIndex != 1 {
		t.Errorf("record index = %d, want 1", *violations[0].RecordIndex)
	}
}

func TestRunFlagsEmptyString(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("note", schema.TypeString, false))
	records := []dataset.Record{
		{"note": "fine"},
		{"note": "   "},
	}

	out := v.Run(records, sch, DefaultConfig())

	empties := issuesOfType(out.Issues, quality.IssueEmptyValue)
	if len(empties) != 1 {
		t.Fatalf("got %d empty-value issues, want 1", len(empties))
	}
	if empties[0].Severity != quality.SeverityLow {
		t.Errorf("severity = %s, want low", empties[0].Severity)
	}
}

func TestRunCustomRules(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("amount", schema.TypeInteger, true))
	records := []dataset.Record{
		{"amount": 10},
		{"amount": 500},
	}

	cfg := DefaultConfig()
	cfg.DetectOutliers = false
	cfg.CustomRules = []quality.CustomRule{
		{
			Name:      "amount-cap",
			Severity:  quality.SeverityHigh,
			Dimension: quality.DimValidity,
			Validate: func(rec dataset.Record) (bool, string) {
				n, _ := rec["amount"].(int)
				if n > 100 {
					return false, "amount exceeds cap"
				}
				return true, ""
			},
		},
	}

	out := v.Run(records, sch, cfg)

	violations := issuesOfType(out.Issues, quality.IssueCustomRuleViolation)
	if len(violations) != 1 {
		t.Fatalf("got %d custom rule violations, want 1", len(violations))
	}
	if *violations[0].RecordIndex != 1 {
		t.Errorf("record index = %d, want 1", *violations[0].RecordIndex)
	}
	if violations[0].Message != "amount exceeds cap" {
		t.Errorf("message = %q", violations[0].Message)
	}
	if violations[0].Severity != quality.SeverityHigh {
		t.Errorf("severity = %s, want high", violations[0].Severity)
	}
}

func TestRunPanickingCustomRuleIsContained(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("a", schema.TypeInteger, true))
	records := []dataset.Record{{"a": 1}}

	cfg := DefaultConfig()
	cfg.CustomRules = []quality.CustomRule{
		{
			Name: "boom",
			Validate: func(rec dataset.Record) (bool, string) {
				panic("rule blew up")
			},
		},
	}

	out := v.Run(records, sch, cfg)
	if got := issuesOfType(out.Issues, quality.IssueCustomRuleViolation); len(got) != 0 {
		t.Errorf("panicking rule should be skipped, got %v", got)
	}
}

func TestRunReferenceChecks(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("id", schema.TypeInteger, true))
	records := []dataset.Record{
		{"id": 1},
		{"id": 2, "parentId": 1},
		{"id": 3, "parentId": 99},
	}

	cfg := DefaultConfig()
	cfg.ValidateReferences = true
	out := v.Run(records, sch, cfg)

	violations := issuesOfType(out.Issues, quality.IssueReferenceViolation)
	if len(violations) != 1 {
		t.Fatalf("got %d reference violations, want 1", len(violations))
	}
	if *violations[0].RecordIndex != 2 {
		t.Errorf("record index = %d, want 2", *violations[0].RecordIndex)
	}
	if violations[0].Dimension != quality.DimIntegrity {
		t.Errorf("dimension = %s, want integrity", violations[0].Dimension)
	}
}

func TestRunReferenceChecksDisabledByDefault(t *testing.T) {
	v := NewValidator(nil)
	sch := schemaOf(fieldOf("id", schema.TypeInteger, true))
	records := []dataset.Record{
		{"id": 1, "parentId": 99},
	}

	out := v.Run(records, sch, DefaultConfig())
	if got := issuesOfType(out.Issues, quality.IssueReferenceViolation); len(got) != 0 {
		t.Errorf("reference checks should be off by default, got %v", got)
	}
}

func TestDistributionPassMoments(t *testing.T) {
	sch := schemaOf(fieldOf("n", schema.TypeInteger, true))
	sample := []dataset.Record{
		{"n": 2}, {"n": 4}, {"n": 4}, {"n": 4}, {"n": 5}, {"n": 5}, {"n": 7}, {"n": 9},
	}

	accs := distributionPass(sample, sch)
	acc := accs["n"]

	if acc.NumericCount != 8 {
		t.Fatalf("numeric count = %d, want 8", acc.NumericCount)
	}
	if acc.Mean != 5 {
		t.Errorf("mean = %g, want 5", acc.Mean)
	}
	// Classic population example: stddev exactly 2
	if acc.StdDev != 2 {
		t.Errorf("stddev = %g, want 2", acc.StdDev)
	}
	if acc.Min != 2 || acc.Max != 9 {
		t.Errorf("min/max = %g/%g, want 2/9", acc.Min, acc.Max)
	}
	if acc.UniqueCount != 5 {
		t.Errorf("unique count = %d, want 5", acc.UniqueCount)
	}
}
