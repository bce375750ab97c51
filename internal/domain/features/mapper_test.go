package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitrack/unitrack-api/internal/domain/profile"
)

func fixedClock() func() time.Time {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func sampleProfile() profile.Document {
	return profile.Document{
		"sexo":               "M",
		"fecha_nacimiento":   "2002-03-15",
		"tipo_colegio":       "Privado",
		"promedio_general":   15.0,
		"creditos_aprobados": 80.0,
		"puntaje_ingreso":    85.0,
		"semestres_cursados": 4.0,
		"tiene_beca":         true,
		"cantidad_reservas":  1.0,
		"periodo_ingreso":    "2021-1",
	}
}

func TestMapper_ProducesFullFeatureSet(t *testing.T) {
	m := NewMapperWithClock(fixedClock())

	set, err := m.Map(sampleProfile(), "CS2B01")
	require.NoError(t, err)

	assert.Len(t, set, FeatureCount)
	for _, key := range ExpectedFeatureKeys() {
		assert.Contains(t, set, key)
	}
}

func TestMapper_Deterministic(t *testing.T) {
	m := NewMapperWithClock(fixedClock())

	first, err := m.Map(sampleProfile(), "CS2B01")
	require.NoError(t, err)
	second, err := m.Map(sampleProfile(), "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMapper_DerivedGradeStatistics(t *testing.T) {
	m := NewMapperWithClock(fixedClock())

	set, err := m.Map(sampleProfile(), "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, 15.0, set["PROM_POND_HIST"])
	assert.Equal(t, 17.0, set["NOTA_MAX_HIST"])
	assert.Equal(t, 12.0, set["NOTA_MIN_HIST"])
	assert.Equal(t, 13.5, set["NOTA_Q1_HIST"])
	assert.Equal(t, 16.5, set["NOTA_Q3_HIST"])
	assert.Equal(t, 0.92, set["ASIST_PROM_HIST"])
	assert.Equal(t, 0.93, set["ASIST_PROM_CLUSTER_HIST"])
	assert.InDelta(t, 14.25, set["PROM_POND_CLUSTER_HIST"], 1e-9)
}

func TestMapper_GradeStatisticsClampedToScale(t *testing.T) {
	m := NewMapperWithClock(fixedClock())
	doc := sampleProfile()
	doc["promedio_general"] = 19.5

	set, err := m.Map(doc, "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, 20.0, set["NOTA_MAX_HIST"])
	assert.Equal(t, 20.0, set["NOTA_Q3_HIST"])
}

func TestMapper_NoHistoryCollapsesToZero(t *testing.T) {
	m := NewMapperWithClock(fixedClock())
	doc := sampleProfile()
	doc["semestres_cursados"] = 0.0

	set, err := m.Map(doc, "CS2B01")
	require.NoError(t, err)

	assert.Zero(t, set["PROM_POND_HIST"])
	assert.Zero(t, set["NOTA_MAX_HIST"])
	assert.Zero(t, set["NOTA_MEDIAN_CLUSTER_HIST"])
	assert.Equal(t, 0.95, set["ASIST_PROM_HIST"])
	assert.Equal(t, 0.95, set["ASIST_PROM_CLUSTER_HIST"])
	assert.Equal(t, 0.0, set["SEM_CURSADOS"])
	assert.Equal(t, 1.0, set["SEM"])
}

func TestMapper_Defaults(t *testing.T) {
	m := NewMapperWithClock(fixedClock())

	set, err := m.Map(profile.Document{}, "CS2B01")
	require.NoError(t, err)

	assert.Equal(t, 1.0, set["SEXO"])                // defaults to M
	assert.Equal(t, 1.0, set["TIPO_COLEGIO_COD"])    // Público
	assert.Equal(t, 20.0, set["FECHA_NACIMIENTO"])   // default age
	assert.Equal(t, 70.0, set["PTJE_INGRESO"])       // default admission score
	assert.Equal(t, 2024.1, set["PER_INGRESO_NUM"])  // default period 2024-1
	assert.Equal(t, 2024.1, set["PER_MATRICULA_NUM"])
	assert.Equal(t, 0.2, set["POBREZA_RES"])
	assert.Equal(t, 0.25, set["POBREZA_PRO"])
	assert.Equal(t, 3.0, set["CREDITOS"])
	assert.Equal(t, 4.0, set["HRS_CURSO"])
	assert.Equal(t, 2.0, set["NIVEL_CURSO"])
}

func TestMapper_UnknownSchoolTypeFallsBack(t *testing.T) {
	m := NewMapperWithClock(fixedClock())
	doc := sampleProfile()
	doc["tipo_colegio"] = "Otro"

	set, err := m.Map(doc, "CS2B01")
	require.NoError(t, err)
	assert.Equal(t, 1.0, set["TIPO_COLEGIO_COD"])
}

func TestMapper_UnparsableBirthDateUsesDefaultAge(t *testing.T) {
	m := NewMapperWithClock(fixedClock())
	doc := sampleProfile()
	doc["fecha_nacimiento"] = "not-a-date"

	set, err := m.Map(doc, "CS2B01")
	require.NoError(t, err)
	assert.Equal(t, 20.0, set["FECHA_NACIMIENTO"])
}

func TestMapper_AgeFromBirthDate(t *testing.T) {
	m := NewMapperWithClock(fixedClock())
	doc := sampleProfile()
	doc["fecha_nacimiento"] = "2004-06-01"

	set, err := m.Map(doc, "CS2B01")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, set["FECHA_NACIMIENTO"], 0.01)
}

func TestMapper_UnparsablePeriodFails(t *testing.T) {
	m := NewMapperWithClock(fixedClock())
	doc := sampleProfile()
	doc["periodo_ingreso"] = "garbage"

	_, err := m.Map(doc, "CS2B01")
	assert.Error(t, err)
}

func TestMapper_CourseCodeEncoding(t *testing.T) {
	m := NewMapperWithClock(fixedClock())

	a, err := m.Map(sampleProfile(), "CS2B01")
	require.NoError(t, err)
	b, err := m.Map(sampleProfile(), "MA1001")
	require.NoError(t, err)

	// Hash-derived features stay inside their ranges.
	assert.GreaterOrEqual(t, a["COD_CURSO"], 0.0)
	assert.Less(t, a["COD_CURSO"], 1000.0)
	assert.GreaterOrEqual(t, a["CODIGO_y"], 0.0)
	assert.Less(t, a["CODIGO_y"], 100.0)
	assert.GreaterOrEqual(t, a["CURSO"], 0.0)
	assert.Less(t, a["CURSO"], 500.0)

	// Different codes land in different clusters here.
	assert.Equal(t, 7.0, a["CLUSTER_CURSO"])
	assert.Equal(t, 5.0, b["CLUSTER_CURSO"])
}

func TestClusterForCode(t *testing.T) {
	cases := map[string]float64{
		"CS1103": 1,
		"CS2B01": 7,
		"CS3S01": 2,
		"FG101":  3,
		"MA2001": 5,
		"CB1101": 5,
		"ET201":  2,
		"XX999":  0,
		"":       0,
	}
	for code, want := range cases {
		assert.Equal(t, want, clusterForCode(code), "code %q", code)
	}
}
