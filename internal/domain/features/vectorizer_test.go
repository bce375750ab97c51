package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToVector_SortedKeyOrder(t *testing.T) {
	set := Set{"b": 2, "a": 1}

	vector, err := ToVector(set, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vector)
}

func TestToVector_CanonicalOrder(t *testing.T) {
	set := Set{"a": 1, "b": 2, "c": 3}

	vector, err := ToVector(set, []string{"c", "a"}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, vector)
}

func TestToVector_MissingFeaturesNamesAll(t *testing.T) {
	set := Set{"a": 1}

	_, err := ToVector(set, []string{"a", "c", "d"}, false)
	require.Error(t, err)

	var missing *MissingFeaturesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"c", "d"}, missing.Keys)
	assert.Contains(t, err.Error(), "c")
	assert.Contains(t, err.Error(), "d")
}

func TestToVector_EmptySet(t *testing.T) {
	_, err := ToVector(Set{}, nil, false)
	assert.ErrorIs(t, err, ErrEmptyFeatures)

	vector, err := ToVector(Set{}, nil, true)
	require.NoError(t, err)
	assert.Empty(t, vector)
}

func TestCoerceSet(t *testing.T) {
	set, err := CoerceSet(map[string]any{
		"a": 1.5,
		"b": 3,
		"c": "2.25",
		"d": " 7 ",
	})
	require.NoError(t, err)
	assert.Equal(t, Set{"a": 1.5, "b": 3, "c": 2.25, "d": 7}, set)
}

func TestCoerceSet_RejectsNonNumeric(t *testing.T) {
	_, err := CoerceSet(map[string]any{"ok": 1.0, "bad": "not a number"})
	require.ErrorIs(t, err, ErrInvalidFeatureValue)
	assert.Contains(t, err.Error(), "bad")

	_, err = CoerceSet(map[string]any{"bad": []any{1, 2}})
	assert.ErrorIs(t, err, ErrInvalidFeatureValue)
}

func TestSet_Clone(t *testing.T) {
	original := Set{"a": 1}
	clone := original.Clone()
	clone["a"] = 99
	clone["b"] = 2

	assert.Equal(t, 1.0, original["a"])
	assert.NotContains(t, original, "b")
}
