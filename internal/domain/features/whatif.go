package features

import (
	"github.com/unitrack/unitrack-api/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// WHAT-IF ADJUSTER
//
// What-if requests ask "what would the prediction be if X changed". Deltas
// are named signed adjustments. When the student has a stored profile, a
// delta targeting a simplified-profile field (e.g. promedio_general) is
// applied to a local copy of the profile and the whole feature set is
// recomputed, so derived statistics move consistently. Deltas that name raw
// features are added onto the mapped set directly. The stored profile is
// never mutated.
// ══════════════════════════════════════════════════════════════════════════════

// Adjuster applies what-if deltas ahead of re-scoring.
type Adjuster struct {
	mapper *Mapper
}

// NewAdjuster creates an adjuster over the given mapper.
func NewAdjuster(mapper *Mapper) *Adjuster {
	return &Adjuster{mapper: mapper}
}

// Adjust produces the feature set for a what-if request.
//
// With a profile document, deltas hitting numeric simplified fields adjust a
// clone of the document before re-mapping; the rest are applied additively
// to the mapped set. Without a profile, all deltas are applied additively
// onto the caller-supplied base set, defaulting missing targets to zero.
func (a *Adjuster) Adjust(doc profile.Document, base Set, deltas map[string]float64, courseCode string) (Set, error) {
	if doc == nil {
		adjusted := base.Clone()
		if adjusted == nil {
			adjusted = Set{}
		}
		for key, delta := range deltas {
			adjusted[key] += delta
		}
		return adjusted, nil
	}

	local := doc.Clone()
	for key, delta := range deltas {
		// Only numeric fields can be adjusted; a delta naming a
		// non-numeric profile field is dropped rather than smuggled
		// into the feature set under the same name.
		if current, ok := local.NumericField(key); ok {
			local.SetNumericField(key, current+delta)
		}
	}

	adjusted, err := a.mapper.Map(local, courseCode)
	if err != nil {
		return nil, err
	}

	for key, delta := range deltas {
		if _, isProfileField := local[key]; isProfileField {
			continue
		}
		adjusted[key] += delta
	}
	return adjusted, nil
}
