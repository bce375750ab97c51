package features

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE -> FEATURE MAPPER
//
// The model was trained on 41 features of full academic records. The
// simplified profile carries roughly a dozen user-reported fields, so the
// remaining features are derived estimates: historical grade statistics are
// reconstructed from the general average via fixed linear offsets, cluster
// statistics mirror them scaled down, and course metadata uses fixed
// defaults. These constants are an approximation layer standing in for
// unavailable historical data and must not be "improved" from real history.
// ══════════════════════════════════════════════════════════════════════════════

// FeatureCount is the exact number of features the model expects.
const FeatureCount = 41

// Grade bounds on the 0-20 scale.
const (
	gradeFloor   = 0.0
	gradeCeiling = 20.0
)

// Attendance constants: students with history attend slightly less than the
// optimistic no-history default.
const (
	attendanceHist        = 0.92
	attendanceClusterHist = 0.93
	attendanceNoHistory   = 0.95
)

// Defaults applied when the profile omits a field.
const (
	defaultPeriod    = "2024-1"
	defaultAge       = 20.0
	defaultAverage   = 14.0
	defaultAdmission = 70.0
	defaultGender    = "M"
)

// Fixed course metadata. The mapper does not look up the actual catalog
// entry for the course code; see the catalog for the real values. Known
// simplification carried over from the trained model's preprocessing.
const (
	defaultCourseCredits = 3.0
	defaultCourseHours   = 4.0
	defaultCourseType    = 0.0 // Obligatorio
	defaultCourseLevel   = 2.0
)

// Hash ranges for the pseudo-encoded course code features.
const (
	rangeCodCurso = 1000
	rangeCodigoY  = 100
	rangeCurso    = 500
)

// highSchoolCodes maps the reported high-school type to its trained code.
// Unknown values fall back to the first category.
var highSchoolCodes = map[string]float64{
	"Público":              1,
	"Privado":              2,
	"Público - Provincial": 3,
	"Privado - Religioso":  4,
}

// clusterPrefixes maps course-code prefixes to subject-area clusters.
// Longest prefix wins, so "CS2H1" resolves through "CS2" -> 7.
var clusterPrefixes = map[string]float64{
	"CS1": 1, // discrete math & theory
	"CS2": 7, // advanced programming
	"CS3": 2, // systems & engineering
	"FG":  3, // general education
	"MA":  5, // mathematics
	"CB":  5, // basic sciences
	"ET":  2, // engineering
}

// featureOrder lists the 41 feature names in their documentation order.
var featureOrder = []string{
	// Demographic & background
	"SEXO", "ESTADO_CIVIL", "TIPO_COLEGIO_COD", "FECHA_NACIMIENTO", "PTJE_INGRESO",
	// Academic history
	"PROM_POND_HIST", "NOTA_MAX_HIST", "NOTA_MIN_HIST", "NOTA_MEDIAN_HIST",
	"NOTA_Q1_HIST", "NOTA_Q3_HIST", "ASIST_PROM_HIST", "CRED_APROB_HIST",
	// Course cluster history
	"PROM_POND_CLUSTER_HIST", "NOTA_MAX_CLUSTER_HIST", "NOTA_MIN_CLUSTER_HIST",
	"NOTA_MEDIAN_CLUSTER_HIST", "NOTA_Q1_CLUSTER_HIST", "NOTA_Q3_CLUSTER_HIST",
	"ASIST_PROM_CLUSTER_HIST", "CRED_APROB_CLUSTER_HIST",
	// Current course details
	"COD_CURSO", "CREDITOS", "TIPO_CURSO", "HRS_CURSO", "CLUSTER_CURSO",
	// Student progress & status
	"SEM_CURSADOS", "CANT_RESERVAS", "SEM", "NIVEL_CURSO", "BECA_VIGENTE",
	"ESTADO_PASADO", "HRS_INASISTENCIA_ACUM_PASADO_y",
	// Institutional / socioeconomic
	"FAMILIA", "CODIGO_y", "POBREZA_RES", "POBREZA_PRO",
	// Period & timing
	"PER_INGRESO_NUM", "PER_MATRICULA_NUM",
	// Additional encoded categoricals
	"TIPO_CICLO", "CURSO",
}

// ExpectedFeatureKeys returns the 41 feature names the model expects.
func ExpectedFeatureKeys() []string {
	keys := make([]string, len(featureOrder))
	copy(keys, featureOrder)
	return keys
}

// Mapper expands a simplified student profile into the full feature set.
// It is safe for concurrent use: it holds no per-call mutable state.
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a mapper using the wall clock for age computation.
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// NewMapperWithClock creates a mapper with an injected clock. Age is the
// mapper's only time dependency, so injecting the clock makes the mapping a
// pure function for tests.
func NewMapperWithClock(now func() time.Time) *Mapper {
	return &Mapper{now: now}
}

// Map converts a profile document and a course code into the full feature
// set. Deterministic and total over well-formed inputs; the only hard error
// is an admission period that is present but unparsable.
func (m *Mapper) Map(doc profile.Document, courseCode string) (Set, error) {
	period := doc.String("periodo_ingreso", defaultPeriod)
	periodNum, err := profile.ParsePeriod(period)
	if err != nil {
		return nil, shared.WrapError("profile", "Map", shared.ErrInvalidFormat,
			"unparsable admission period "+period, err)
	}
	// Registration period is not tracked separately from admission.
	matriculaNum := periodNum

	schoolCode, ok := highSchoolCodes[doc.String("tipo_colegio", "Público")]
	if !ok {
		schoolCode = highSchoolCodes["Público"]
	}

	age := m.ageFromBirthDate(doc.String("fecha_nacimiento", ""))

	promedio := doc.Float("promedio_general", defaultAverage)
	creditos := doc.Float("creditos_aprobados", 0)
	puntaje := doc.Float("puntaje_ingreso", defaultAdmission)
	semestres := doc.Int("semestres_cursados", 0)
	reservas := doc.Float("cantidad_reservas", 0)

	beca := 0.0
	if doc.Bool("tiene_beca", false) {
		beca = 1.0
	}

	sexo := 0.0
	if doc.String("sexo", defaultGender) == "M" {
		sexo = 1.0
	}

	// With zero semesters completed there is no history: every derived
	// statistic collapses to zero and attendance takes its optimistic
	// no-history default.
	hist := func(v float64) float64 {
		if semestres > 0 {
			return v
		}
		return 0
	}
	attend := func(v float64) float64 {
		if semestres > 0 {
			return v
		}
		return attendanceNoHistory
	}

	set := Set{
		// Demographic & background
		"SEXO":             sexo,
		"ESTADO_CIVIL":     0, // Soltero, the dominant category for students
		"TIPO_COLEGIO_COD": schoolCode,
		"FECHA_NACIMIENTO": age, // age in years stands in for the raw date
		"PTJE_INGRESO":     puntaje,

		// Academic history, estimated from the general average
		"PROM_POND_HIST":   hist(promedio),
		"NOTA_MAX_HIST":    hist(math.Min(promedio+2.0, gradeCeiling)),
		"NOTA_MIN_HIST":    hist(math.Max(promedio-3.0, gradeFloor)),
		"NOTA_MEDIAN_HIST": hist(promedio),
		"NOTA_Q1_HIST":     hist(math.Max(promedio-1.5, gradeFloor)),
		"NOTA_Q3_HIST":     hist(math.Min(promedio+1.5, gradeCeiling)),
		"ASIST_PROM_HIST":  attend(attendanceHist),
		"CRED_APROB_HIST":  creditos,

		// Cluster history mirrors overall history, scaled to simulate
		// narrower in-cluster performance
		"PROM_POND_CLUSTER_HIST":   hist(promedio * 0.95),
		"NOTA_MAX_CLUSTER_HIST":    hist(math.Min(promedio+1.5, gradeCeiling)),
		"NOTA_MIN_CLUSTER_HIST":    hist(math.Max(promedio-2.5, gradeFloor)),
		"NOTA_MEDIAN_CLUSTER_HIST": hist(promedio * 0.98),
		"NOTA_Q1_CLUSTER_HIST":     hist(math.Max(promedio-1.2, gradeFloor)),
		"NOTA_Q3_CLUSTER_HIST":     hist(math.Min(promedio+1.2, gradeCeiling)),
		"ASIST_PROM_CLUSTER_HIST":  attend(attendanceClusterHist),
		"CRED_APROB_CLUSTER_HIST":  creditos * 0.3, // ~30% of credits in the same cluster

		// Current course details (fixed defaults, not a catalog lookup)
		"COD_CURSO":     float64(hashCode(courseCode, rangeCodCurso)),
		"CREDITOS":      defaultCourseCredits,
		"TIPO_CURSO":    defaultCourseType,
		"HRS_CURSO":     defaultCourseHours,
		"CLUSTER_CURSO": clusterForCode(courseCode),

		// Student progress & status
		"SEM_CURSADOS":                   float64(semestres),
		"CANT_RESERVAS":                  reservas,
		"SEM":                            float64(semestres + 1),
		"NIVEL_CURSO":                    defaultCourseLevel,
		"BECA_VIGENTE":                   beca,
		"ESTADO_PASADO":                  0, // Regular
		"HRS_INASISTENCIA_ACUM_PASADO_y": 0,

		// Institutional / socioeconomic
		"FAMILIA":     0, // CS, the dominant program family
		"CODIGO_y":    float64(hashCode(courseCode, rangeCodigoY)),
		"POBREZA_RES": 0.2,
		"POBREZA_PRO": 0.25,

		// Period & timing
		"PER_INGRESO_NUM":   periodNum,
		"PER_MATRICULA_NUM": matriculaNum,

		// Additional encoded categoricals
		"TIPO_CICLO": 0, // Regular cycle
		"CURSO":      float64(hashCode(courseCode, rangeCurso)),
	}

	return set, nil
}

// ageFromBirthDate computes age in years from an ISO date. A missing or
// unparsable date yields the default age, never an error.
func (m *Mapper) ageFromBirthDate(birth string) float64 {
	if birth == "" {
		return defaultAge
	}
	t, err := time.Parse("2006-01-02", birth)
	if err != nil {
		t, err = time.Parse(time.RFC3339, birth)
		if err != nil {
			return defaultAge
		}
	}
	return m.now().Sub(t).Hours() / 24 / 365.25
}

// hashCode encodes a course code into [0, mod) with FNV-1a. The original
// preprocessing used runtime string hashing, which is not stable across
// platforms; FNV-1a keeps the encoding reproducible everywhere.
func hashCode(code string, mod uint32) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	return h.Sum32() % mod
}

// clusterForCode resolves the subject-area cluster from the course-code
// prefix, longest prefix first. Unmatched prefixes map to 0.
func clusterForCode(code string) float64 {
	if len(code) >= 3 {
		if c, ok := clusterPrefixes[code[:3]]; ok {
			return c
		}
	}
	if len(code) >= 2 {
		if c, ok := clusterPrefixes[code[:2]]; ok {
			return c
		}
	}
	return 0
}
