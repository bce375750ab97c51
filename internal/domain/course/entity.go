// Package course contains the course catalog domain model and the
// eligibility rules that decide which courses a student may enroll in.
// This is a pure domain layer with zero external dependencies.
package course

import (
	"errors"
	"strings"
)

// Domain errors for the course package.
var (
	ErrEmptyCode = errors.New("course: code cannot be empty")
)

// Type codes for catalog entries.
const (
	// TypeObligatory marks a mandatory course.
	TypeObligatory = "O"
	// TypeElectiveHumanistic marks a humanistic elective.
	TypeElectiveHumanistic = "EH"
	// TypeElectiveProfessional marks a professional elective.
	TypeElectiveProfessional = "EP"
)

// Entry is a course catalog entry. The catalog is static reference data
// loaded by an external ingestion step and read-only to this core; nullable
// columns are pointers.
type Entry struct {
	Code          string   `json:"cod_curso"`
	Name          string   `json:"nombre"`
	Semester      *int     `json:"semestre,omitempty"`
	Type          *string  `json:"tipo,omitempty"`
	Hours         *int     `json:"horas,omitempty"`
	Credits       *int     `json:"creditos,omitempty"`
	Prerequisites []string `json:"prerequisitos"`
	Family        *string  `json:"familia,omitempty"`
	Level         *int     `json:"nivel,omitempty"`
}

// Validate checks the entry for well-formedness.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Code) == "" {
		return ErrEmptyCode
	}
	return nil
}

// HasPrerequisites reports whether the course requires prior coursework.
func (e *Entry) HasPrerequisites() bool {
	return len(e.Prerequisites) > 0
}

// NormalizedName returns the course name upper-cased and trimmed, the form
// used for matching against a student's approved-course list.
func (e *Entry) NormalizedName() string {
	return Normalize(e.Name)
}

// NormalizedCode returns the course code upper-cased and trimmed.
func (e *Entry) NormalizedCode() string {
	return Normalize(e.Code)
}

// Normalize upper-cases and trims a course name or code for set matching.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
