// Package features turns student profiles into the fixed numeric feature
// set the prediction model consumes. It contains the vectorizer, the
// profile-to-feature mapper, and the what-if delta adjuster. All operations
// are pure functions over in-memory values.
package features

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Set is a named feature payload: feature name to numeric value.
type Set map[string]float64

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SortedKeys returns the feature names in lexicographic order. This is the
// fallback ordering used when no canonical ordering is supplied.
func (s Set) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Vectorization errors.
var (
	// ErrEmptyFeatures is returned when the feature payload is empty and
	// empty vectors were not explicitly allowed.
	ErrEmptyFeatures = errors.New("features: payload is empty")

	// ErrInvalidFeatureValue is returned when a feature value cannot be
	// coerced to a float.
	ErrInvalidFeatureValue = errors.New("features: value is not numeric")
)

// MissingFeaturesError reports every feature required by a canonical
// ordering that is absent from the input, not just the first.
type MissingFeaturesError struct {
	Keys []string
}

// Error implements the error interface.
func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("features: missing feature(s): %s", strings.Join(e.Keys, ", "))
}

// ToVector produces a single-row numeric vector from a feature set.
//
// When order is non-nil it is the canonical ordering and every listed name
// must be present; otherwise keys are sorted lexicographically, a fallback
// for ad-hoc payloads rather than the primary model path. An empty set is an
// error unless allowEmpty is set, in which case the vector is empty.
func ToVector(set Set, order []string, allowEmpty bool) ([]float64, error) {
	if len(set) == 0 {
		if !allowEmpty {
			return nil, ErrEmptyFeatures
		}
		return []float64{}, nil
	}

	keys := order
	if keys == nil {
		keys = set.SortedKeys()
	} else {
		var missing []string
		for _, k := range keys {
			if _, ok := set[k]; !ok {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return nil, &MissingFeaturesError{Keys: missing}
		}
	}

	vector := make([]float64, len(keys))
	for i, k := range keys {
		vector[i] = set[k]
	}
	return vector, nil
}

// CoerceSet converts an untyped feature payload (as decoded from JSON) into
// a Set. Numeric strings are accepted; anything else fails with
// ErrInvalidFeatureValue naming the offending key.
func CoerceSet(raw map[string]any) (Set, error) {
	set := make(Set, len(raw))
	for k, v := range raw {
		f, err := coerceFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFeatureValue, k)
		}
		set[k] = f
	}
	return set, nil
}

// coerceFloat converts a scalar to float64.
func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, ErrInvalidFeatureValue
		}
		return f, nil
	default:
		return 0, ErrInvalidFeatureValue
	}
}
