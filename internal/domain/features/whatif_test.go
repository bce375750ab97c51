package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust_ProfileFieldRecomputesDerivedStats(t *testing.T) {
	mapper := NewMapperWithClock(fixedClock())
	adj := NewAdjuster(mapper)
	doc := sampleProfile()

	base, err := mapper.Map(doc, "CS2B01")
	require.NoError(t, err)

	adjusted, err := adj.Adjust(doc, base, map[string]float64{"promedio_general": 1.0}, "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, 16.0, adjusted["PROM_POND_HIST"])
	assert.Equal(t, 18.0, adjusted["NOTA_MAX_HIST"])
	assert.Equal(t, 13.0, adjusted["NOTA_MIN_HIST"])
	assert.InDelta(t, 15.2, adjusted["PROM_POND_CLUSTER_HIST"], 1e-9)
}

func TestAdjust_DoesNotMutateStoredProfile(t *testing.T) {
	mapper := NewMapperWithClock(fixedClock())
	adj := NewAdjuster(mapper)
	doc := sampleProfile()

	_, err := adj.Adjust(doc, nil, map[string]float64{"promedio_general": 2.0}, "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, 15.0, doc["promedio_general"])
}

func TestAdjust_NonNumericProfileFieldDropped(t *testing.T) {
	mapper := NewMapperWithClock(fixedClock())
	adj := NewAdjuster(mapper)
	doc := sampleProfile()

	plain, err := mapper.Map(doc, "CS2B01")
	require.NoError(t, err)

	adjusted, err := adj.Adjust(doc, plain, map[string]float64{"sexo": 1.0}, "CS2B01")
	require.NoError(t, err)

	// "sexo" is not numeric, so the delta neither shifts the encoded
	// feature nor leaks in under its own name.
	assert.Equal(t, plain["SEXO"], adjusted["SEXO"])
	assert.NotContains(t, adjusted, "sexo")
}

func TestAdjust_RawFeatureDeltaIsAdditive(t *testing.T) {
	mapper := NewMapperWithClock(fixedClock())
	adj := NewAdjuster(mapper)
	doc := sampleProfile()

	plain, err := mapper.Map(doc, "CS2B01")
	require.NoError(t, err)

	adjusted, err := adj.Adjust(doc, plain, map[string]float64{"ASIST_PROM_HIST": 0.05}, "CS2B01")
	require.NoError(t, err)

	assert.InDelta(t, plain["ASIST_PROM_HIST"]+0.05, adjusted["ASIST_PROM_HIST"], 1e-9)
}

func TestAdjust_WithoutProfileAppliesOntoBase(t *testing.T) {
	adj := NewAdjuster(NewMapperWithClock(fixedClock()))
	base := Set{"PROM_POND_HIST": 13.0}

	adjusted, err := adj.Adjust(nil, base, map[string]float64{
		"PROM_POND_HIST": 2.0,
		"PTJE_INGRESO":   5.0,
	}, "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, 15.0, adjusted["PROM_POND_HIST"])
	assert.Equal(t, 5.0, adjusted["PTJE_INGRESO"])
	assert.Equal(t, 13.0, base["PROM_POND_HIST"])
}

func TestAdjust_WithoutProfileNilBase(t *testing.T) {
	adj := NewAdjuster(NewMapperWithClock(fixedClock()))

	adjusted, err := adj.Adjust(nil, nil, map[string]float64{"SEM_CURSADOS": 1.0}, "")
	require.NoError(t, err)

	assert.Equal(t, Set{"SEM_CURSADOS": 1.0}, adjusted)
}
