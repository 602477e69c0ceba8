package validate

import (
	"math"

	"schemalens/domain/dataset"
	"schemalens/domain/schema"
	"schemalens/domain/value"
	"schemalens/internal/detect"
)

// FieldAccumulator is the immutable output of the distribution pass for one
// field. The validation pass reads it; nothing mutates it afterwards.
type FieldAccumulator struct {
	Field        string
	TotalCount   int
	NullCount    int
	UniqueCount  int
	NumericCount int
	Min          float64
	Max          float64
	Sum          float64
	SumSq        float64
	Mean         float64
	StdDev       float64
}

// distributionPass folds the sample into one accumulator per schema field:
// null counts, unique-value counts, and for numeric fields the running
// min/max/sum plus sum of squares, from which the mean and population
// standard deviation fall out without a re-scan.
func distributionPass(sample []dataset.Record, sch *schema.DatasetSchema) map[string]FieldAccumulator {
	accs := make(map[string]FieldAccumulator, len(sch.Fields))

	for _, field := range sch.Fields {
		acc := FieldAccumulator{Field: field.Name, TotalCount: len(sample)}
		unique := make(map[string]bool)
		numeric := field.Type.IsNumericFamily()

		for _, rec := range sample {
			raw, ok := rec[field.Name]
			if !ok || raw == nil {
				acc.NullCount++
				continue
			}
			unique[value.Canonical(raw)] = true

			if !numeric {
				continue
			}
			f, ok := detect.ParseNumeric(raw)
			if !ok {
				continue
			}
			if acc.NumericCount == 0 || f < acc.Min {
				acc.Min = f
			}
			if acc.NumericCount == 0 || f > acc.Max {
				acc.Max = f
			}
			acc.Sum += f
			acc.SumSq += f * f
			acc.NumericCount++
		}

		acc.UniqueCount = len(unique)
		if acc.NumericCount > 0 {
			n := float64(acc.NumericCount)
			acc.Mean = acc.Sum / n
			variance := acc.SumSq/n - acc.Mean*acc.Mean
			if variance > 0 {
				acc.StdDev = math.Sqrt(variance)
			}
		}
		accs[field.Name] = acc
	}
	return accs
}
