package export

import (
	"fmt"
	"strings"

	"schemalens/domain/schema"
)

// Describe renders a human-readable markdown summary of an inferred schema.
func Describe(sch *schema.DatasetSchema) string {
	if sch == nil || !sch.HasCompleteSchema() {
		return "No schema available: no fields were inferred.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Dataset Schema\n\n")
	fmt.Fprintf(&b, "%d fields inferred from %d of %d records (generated %s).\n\n",
		len(sch.Fields), sch.SampledRecordCount, sch.RecordCount,
		sch.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "| Field | Type | Confidence | Required | Cardinality | Unique |\n")
	fmt.Fprintf(&b, "|-------|------|-----------:|----------|-------------|-------:|\n")
	for _, field := range sch.Fields {
		required := "no"
		if field.Required {
			required = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %.0f%% | %s | %s | %d |\n",
			field.Name, field.Type, field.Confidence*100, required,
			field.Cardinality, field.UniqueCount)
	}
	b.WriteString("\n")

	for _, field := range sch.Fields {
		notes := fieldNotes(field)
		if len(notes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", field.Name, strings.Join(notes, "; "))
	}
	return b.String()
}

func fieldNotes(field schema.FieldSchema) []string {
	notes := make([]string, 0, 3)
	if field.IsPrimaryKeyCandidate {
		notes = append(notes, "primary key candidate")
	}
	if field.Nullable {
		notes = append(notes, fmt.Sprintf("%.0f%% null", field.NullPercent*100))
	}
	if len(field.AlternativeTypes) > 0 {
		alts := make([]string, len(field.AlternativeTypes))
		for i, alt := range field.AlternativeTypes {
			alts[i] = fmt.Sprintf("%s (%.0f%%)", alt.Type, alt.Confidence*100)
		}
		notes = append(notes, "could also be "+strings.Join(alts, ", "))
	}
	if field.Statistics != nil && field.Statistics.Numeric != nil {
		ns := field.Statistics.Numeric
		notes = append(notes, fmt.Sprintf("range [%g, %g], mean %.2f", ns.Min, ns.Max, ns.Mean))
	}
	if field.Error != "" {
		notes = append(notes, "inference failed: "+field.Error)
	}
	return notes
}
