package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_EmptyPathServesMock(t *testing.T) {
	reg := NewRegistry("", MockVersion, nil)

	model, err := reg.Model()
	require.NoError(t, err)

	assert.True(t, model.Usable())
	assert.NotNil(t, model.Probability)
	assert.Equal(t, MockVersion, model.Version)
	assert.Equal(t, MockVersion, reg.Version())
}

func TestRegistry_BadArtifactFallsBackToMock(t *testing.T) {
	path := writeArtifact(t, `{broken`)
	reg := NewRegistry(path, MockVersion, nil)

	model, err := reg.Model()
	require.NoError(t, err)
	assert.Equal(t, MockVersion, model.Version)
}

func TestRegistry_LoadsArtifactOnce(t *testing.T) {
	path := writeArtifact(t, `{
		"version": "v7",
		"kind": "classifier",
		"weights": {"X": 1}
	}`)
	reg := NewRegistry(path, MockVersion, nil)

	first, err := reg.Model()
	require.NoError(t, err)
	second, err := reg.Model()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "v7", reg.Version())
}

func TestRegistry_FallbackVersionWhenArtifactUnversioned(t *testing.T) {
	path := writeArtifact(t, `{"kind": "regressor", "weights": {"X": 1}}`)
	reg := NewRegistry(path, "default-v1", nil)

	model, err := reg.Model()
	require.NoError(t, err)
	assert.Equal(t, "default-v1", model.Version)
}

func TestRegistry_Reset(t *testing.T) {
	reg := NewRegistry("", MockVersion, nil)

	first, err := reg.Model()
	require.NoError(t, err)

	reg.Reset()

	second, err := reg.Model()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
