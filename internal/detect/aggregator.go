package detect

import (
	"math"

	"schemalens/domain/schema"
	"schemalens/domain/value"
)

// Result holds the per-type confidence scores for one field plus the
// resolved primary type.
type Result struct {
	Scores  map[schema.FieldType]float64
	Primary schema.TypeConfidence
}

// Aggregate scores every type predicate over a field's sampled values and
// resolves overlapping-type conflicts. The slice must contain one entry per
// sampled record, nil included: confidence is matches over the total sample,
// so nulls drag every non-null type's score down while feeding the null
// predicate.
func Aggregate(values []interface{}, detectSpecial bool) Result {
	scores := make(map[schema.FieldType]float64, len(schema.DetectionOrder))
	if len(values) == 0 {
		return Result{
			Scores:  scores,
			Primary: schema.TypeConfidence{Type: schema.TypeUnknown, Confidence: 0},
		}
	}

	counts := make(map[schema.FieldType]int, len(schema.DetectionOrder))
	for _, raw := range values {
		v := value.Of(raw)
		for _, t := range schema.DetectionOrder {
			if !detectSpecial && specialStringPredicates[t] {
				continue
			}
			p := predicates[t]
			if t == schema.TypeString && !detectSpecial {
				p = isAnyString
			}
			if p(v) {
				counts[t]++
			}
		}
	}

	total := float64(len(values))
	for t, c := range counts {
		scores[t] = float64(c) / total
	}

	resolveConflicts(scores)

	return Result{Scores: scores, Primary: primaryType(scores)}
}

// resolveConflicts applies the two overlap rules, in order:
//  1. a confident integer column zeroes the generic number score, since the
//     same values fed both counters;
//  2. a confident specialized string format caps the generic string score.
func resolveConflicts(scores map[schema.FieldType]float64) {
	if scores[schema.TypeInteger] > 0.9 {
		scores[schema.TypeNumber] = 0
	}

	for _, t := range schema.SpecializedStringTypes {
		if scores[t] > 0.8 {
			scores[schema.TypeString] = math.Min(scores[schema.TypeString], 0.3)
			break
		}
	}
}

// primaryType picks the highest-confidence type; ties break toward the
// earlier entry in the fixed detection order.
func primaryType(scores map[schema.FieldType]float64) schema.TypeConfidence {
	best := schema.TypeConfidence{Type: schema.TypeUnknown, Confidence: 0}
	for _, t := range schema.DetectionOrder {
		if s, ok := scores[t]; ok && s > best.Confidence {
			best = schema.TypeConfidence{Type: t, Confidence: s}
		}
	}
	return best
}

// Alternatives lists every non-primary type whose confidence clears the
// threshold, strongest first; equal scores keep detection order.
func Alternatives(scores map[schema.FieldType]float64, primary schema.FieldType, threshold float64) []schema.TypeConfidence {
	alts := make([]schema.TypeConfidence, 0)
	for _, t := range schema.DetectionOrder {
		if t == primary {
			continue
		}
		if s, ok := scores[t]; ok && s >= threshold {
			alts = append(alts, schema.TypeConfidence{Type: t, Confidence: s})
		}
	}
	// Insertion sort by descending confidence keeps the detection-order
	// tie-break stable.
	for i := 1; i < len(alts); i++ {
		for j := i; j > 0 && alts[j].Confidence > alts[j-1].Confidence; j-- {
			alts[j], alts[j-1] = alts[j-1], alts[j]
		}
	}
	return alts
}
