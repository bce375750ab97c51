package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_Deterministic(t *testing.T) {
	m := NewMockModel()
	vector := []float64{1, 14.5, 0.92, 80, 2021.1}

	_, first, err := m.PredictProba(vector)
	require.NoError(t, err)
	_, second, err := m.PredictProba(vector)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMockModel_DifferentVectorsDiffer(t *testing.T) {
	m := NewMockModel()

	_, a, err := m.PredictProba([]float64{1, 14.5, 0.92})
	require.NoError(t, err)
	_, b, err := m.PredictProba([]float64{1, 9.0, 0.75})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestMockModel_WithinBounds(t *testing.T) {
	m := NewMockModel()
	vectors := [][]float64{
		{0, 0, 0},
		{20, 20, 20, 20, 20},
		{-5000},
		{5000},
		{2024.1, 14, 0.95, 999},
	}

	for _, vector := range vectors {
		fail, pass, err := m.PredictProba(vector)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pass, 0.2)
		assert.LessOrEqual(t, pass, 0.9)
		assert.InDelta(t, 1.0, fail+pass, 1e-9)
	}
}

func TestMockModel_EmptyVector(t *testing.T) {
	m := NewMockModel()

	fail, pass, err := m.PredictProba(nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, pass, 0.4)
	assert.LessOrEqual(t, pass, 0.8)
	assert.InDelta(t, 1.0, fail+pass, 1e-9)
}

func TestMockModel_HighFeatureMassLeansPass(t *testing.T) {
	m := NewMockModel()

	_, high, err := m.PredictProba([]float64{4000})
	require.NoError(t, err)
	_, low, err := m.PredictProba([]float64{-4000})
	require.NoError(t, err)

	assert.Greater(t, high, low)
}
