package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadArtifact_Classifier(t *testing.T) {
	path := writeArtifact(t, `{
		"version": "unitrack-2024.1",
		"kind": "classifier",
		"intercept": 0.5,
		"weights": {"PROM_POND_HIST": 0.2, "ASIST_PROM_HIST": 1.0}
	}`)

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)

	require.NotNil(t, loaded.Probability)
	assert.Nil(t, loaded.Regression)
	assert.Equal(t, "unitrack-2024.1", loaded.Version)

	// Sorted feature order: ASIST_PROM_HIST, PROM_POND_HIST.
	// Score = 0.5 + 0.92*1.0 + 14*0.2 = 4.22, well into pass territory.
	fail, pass, err := loaded.Probability.PredictProba([]float64{0.92, 14})
	require.NoError(t, err)
	assert.Greater(t, pass, 0.9)
	assert.InDelta(t, 1.0, fail+pass, 1e-9)
}

func TestLoadArtifact_Regressor(t *testing.T) {
	path := writeArtifact(t, `{
		"version": "grades-v3",
		"kind": "regressor",
		"intercept": 2.0,
		"weights": {"PROM_POND_HIST": 1.0}
	}`)

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)

	require.NotNil(t, loaded.Regression)
	assert.Nil(t, loaded.Probability)

	grade, err := loaded.Regression.PredictGrade([]float64{14})
	require.NoError(t, err)
	assert.Equal(t, 16.0, grade)

	// Grades clamp to the 0-20 scale.
	grade, err = loaded.Regression.PredictGrade([]float64{100})
	require.NoError(t, err)
	assert.Equal(t, 20.0, grade)
}

func TestLoadArtifact_UnknownKind(t *testing.T) {
	path := writeArtifact(t, `{"kind": "ranker", "weights": {"X": 1}}`)

	_, err := LoadArtifact(path)
	assert.ErrorIs(t, err, ErrArtifactKind)
}

func TestLoadArtifact_EmptyWeights(t *testing.T) {
	path := writeArtifact(t, `{"kind": "classifier", "weights": {}}`)

	_, err := LoadArtifact(path)
	assert.ErrorIs(t, err, ErrArtifactFeatures)
}

func TestLoadArtifact_MissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadArtifact_BadJSON(t *testing.T) {
	path := writeArtifact(t, `{not json`)

	_, err := LoadArtifact(path)
	assert.Error(t, err)
}

func TestLinearModel_VectorWidthMismatch(t *testing.T) {
	path := writeArtifact(t, `{
		"kind": "classifier",
		"weights": {"A": 1, "B": 2}
	}`)

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)

	_, _, err = loaded.Probability.PredictProba([]float64{1})
	assert.ErrorIs(t, err, ErrVectorWidth)
}
