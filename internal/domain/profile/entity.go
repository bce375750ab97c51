// Package profile contains the student profile domain model.
// A profile is stored as an opaque key-value document so the form can grow
// fields without schema migrations; the typed Simplified view validates the
// fields the prediction pipeline actually reads.
// This is a pure domain layer with zero external dependencies.
package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Domain errors for the profile package.
var (
	ErrInvalidAverage  = errors.New("profile: general average must be between 0 and 20")
	ErrInvalidScore    = errors.New("profile: admission score must be between 0 and 100")
	ErrNegativeCount   = errors.New("profile: count fields cannot be negative")
	ErrInvalidPeriod   = errors.New("profile: admission period must look like YYYY-S")
	ErrMissingGender   = errors.New("profile: gender is required")
	ErrMissingBirth    = errors.New("profile: birth date is required")
	ErrMissingSchool   = errors.New("profile: high-school type is required")
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT
// ══════════════════════════════════════════════════════════════════════════════

// Document is the persisted shape of a student profile: an opaque mapping of
// field name to value. Values come back from JSON storage, so numbers are
// float64 and lists are []any.
type Document map[string]any

// Clone returns a shallow copy of the document. List values are copied one
// level deep so callers can mutate the clone without touching the original.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		if list, ok := v.([]any); ok {
			cp := make([]any, len(list))
			copy(cp, list)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// Float returns the named field as a float64, or def when the field is
// absent or not numeric. Numeric strings count as numeric.
func (d Document) Float(key string, def float64) float64 {
	v, ok := d[key]
	if !ok {
		return def
	}
	f, ok := asFloat(v)
	if !ok {
		return def
	}
	return f
}

// Int returns the named field as an int, or def when absent or not numeric.
func (d Document) Int(key string, def int) int {
	v, ok := d[key]
	if !ok {
		return def
	}
	f, ok := asFloat(v)
	if !ok {
		return def
	}
	return int(f)
}

// String returns the named field as a string, or def when absent.
func (d Document) String(key string, def string) string {
	v, ok := d[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Bool returns the named field as a bool, or def when absent.
func (d Document) Bool(key string, def bool) bool {
	v, ok := d[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// StringList returns the named field as a list of strings. Non-string
// elements are stringified; a missing or malformed field yields nil. This is
// deliberately forgiving: optional profile extensions must never hard-fail.
func (d Document) StringList(key string) []string {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}

// NumericField reports whether the named field holds a numeric value, and
// returns it. Used by what-if delta application, which only adjusts fields
// that already exist and are numeric.
func (d Document) NumericField(key string) (float64, bool) {
	v, ok := d[key]
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// SetNumericField stores a numeric value under the named field.
func (d Document) SetNumericField(key string, value float64) {
	d[key] = value
}

// asFloat converts JSON-ish scalar values to float64. Booleans are not
// numbers here; strings must parse cleanly.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SIMPLIFIED PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Simplified is the user-facing student profile: the ~12 fields collected by
// the onboarding form. It is the validated write model; the Document above is
// what persistence actually stores.
type Simplified struct {
	// Essential demographics
	Sexo            string `json:"sexo"`             // "M" or "F"
	FechaNacimiento string `json:"fecha_nacimiento"` // ISO date, YYYY-MM-DD
	EstadoCivil     string `json:"estado_civil"`
	TipoColegio     string `json:"tipo_colegio"`

	// Academic performance
	PromedioGeneral   float64 `json:"promedio_general"`   // 0-20
	CreditosAprobados int     `json:"creditos_aprobados"` // >= 0
	PuntajeIngreso    float64 `json:"puntaje_ingreso"`    // 0-100

	// Current status
	SemestresCursados int  `json:"semestres_cursados"`
	TieneBeca         bool `json:"tiene_beca"`
	CantidadReservas  int  `json:"cantidad_reservas"`

	// Program
	Familia        string `json:"familia"`
	PeriodoIngreso string `json:"periodo_ingreso"` // "YYYY-1" or "YYYY-2"

	// Academic progress details (optional)
	CursosAprobados        []string `json:"cursos_aprobados,omitempty"`
	CursosAprobadosCodigos []string `json:"cursos_aprobados_codigos,omitempty"`
}

// Validate checks the simplified profile for well-formedness.
func (p *Simplified) Validate() error {
	if strings.TrimSpace(p.Sexo) == "" {
		return ErrMissingGender
	}
	if strings.TrimSpace(p.FechaNacimiento) == "" {
		return ErrMissingBirth
	}
	if strings.TrimSpace(p.TipoColegio) == "" {
		return ErrMissingSchool
	}
	if p.PromedioGeneral < 0 || p.PromedioGeneral > 20 {
		return ErrInvalidAverage
	}
	if p.PuntajeIngreso < 0 || p.PuntajeIngreso > 100 {
		return ErrInvalidScore
	}
	if p.CreditosAprobados < 0 || p.SemestresCursados < 0 || p.CantidadReservas < 0 {
		return ErrNegativeCount
	}
	if _, err := ParsePeriod(p.PeriodoIngreso); err != nil {
		return err
	}
	return nil
}

// ToDocument converts the simplified profile into its persisted document
// form. Optional lists are written only when non-empty.
func (p *Simplified) ToDocument() Document {
	doc := Document{
		"sexo":               p.Sexo,
		"fecha_nacimiento":   p.FechaNacimiento,
		"estado_civil":       p.EstadoCivil,
		"tipo_colegio":       p.TipoColegio,
		"promedio_general":   p.PromedioGeneral,
		"creditos_aprobados": float64(p.CreditosAprobados),
		"puntaje_ingreso":    p.PuntajeIngreso,
		"semestres_cursados": float64(p.SemestresCursados),
		"tiene_beca":         p.TieneBeca,
		"cantidad_reservas":  float64(p.CantidadReservas),
		"familia":            p.Familia,
		"periodo_ingreso":    p.PeriodoIngreso,
	}
	if len(p.CursosAprobados) > 0 {
		doc["cursos_aprobados"] = toAnyList(p.CursosAprobados)
	}
	if len(p.CursosAprobadosCodigos) > 0 {
		doc["cursos_aprobados_codigos"] = toAnyList(p.CursosAprobadosCodigos)
	}
	return doc
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

// ParsePeriod parses an admission period string "YYYY-S" into its numeric
// form YYYY.S (e.g. "2024-1" -> 2024.1).
func ParsePeriod(period string) (float64, error) {
	parts := strings.SplitN(strings.TrimSpace(period), "-", 2)
	if len(parts) != 2 {
		return 0, ErrInvalidPeriod
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1900 || year > 2200 {
		return 0, ErrInvalidPeriod
	}
	sem, err := strconv.Atoi(parts[1])
	if err != nil || sem < 1 {
		return 0, ErrInvalidPeriod
	}
	num, err := strconv.ParseFloat(fmt.Sprintf("%d.%d", year, sem), 64)
	if err != nil {
		return 0, ErrInvalidPeriod
	}
	return num, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STORED PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Stored is a persisted student profile with its audit timestamps.
type Stored struct {
	ID        string
	UserID    string
	Data      Document
	CreatedAt time.Time
	UpdatedAt time.Time
}
