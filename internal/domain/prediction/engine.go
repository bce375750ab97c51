package prediction

import (
	"math"

	"github.com/unitrack/unitrack-api/internal/domain/features"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREDICTION ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Labels for the pass/fail outcome.
const (
	LabelPass = "Aprobar"
	LabelFail = "Desaprobar"
)

// PassMark is the probability threshold above which the label is a pass.
// Fixed, not configurable per request.
const PassMark = 0.5

// MaxGrade is the top of the grading scale.
const MaxGrade = 20.0

// Logistic conversion parameters for the regression path: the passing grade
// on the 0-20 scale and the curve scale. Confidence grows smoothly as the
// predicted grade moves away from the pass/fail boundary.
const (
	passingGrade  = 10.5
	logisticScale = 5.0
)

// Probabilities is the pass/fail probability pair.
type Probabilities struct {
	Fail float64 `json:"fail"`
	Pass float64 `json:"pass"`
}

// Details carries the explainable part of a prediction result.
type Details struct {
	// Probabilities is always present.
	Probabilities Probabilities `json:"probabilities"`

	// EstimatedGrade is present only when the regression path was used.
	EstimatedGrade *float64 `json:"estimated_grade,omitempty"`

	// Deltas echoes the applied what-if adjustments, for audit.
	Deltas map[string]float64 `json:"deltas,omitempty"`
}

// Result is the outcome of one prediction. Never mutated after creation.
type Result struct {
	Label          string
	Score          float64
	Details        Details
	EstimatedGrade *float64
	Version        string
}

// Engine runs feature payloads through the loaded model. It holds no
// per-call mutable state and is safe for concurrent use.
type Engine struct {
	provider Provider
}

// NewEngine creates an engine over a model provider.
func NewEngine(provider Provider) *Engine {
	return &Engine{provider: provider}
}

// Predict vectorizes the feature set (sorted-key order; no canonical
// ordering is enforced at this layer) and runs it through the model.
func (e *Engine) Predict(set features.Set) (*Result, error) {
	model, err := e.provider.Model()
	if err != nil {
		return nil, err
	}
	return e.predictWith(model, set)
}

func (e *Engine) predictWith(model *Loaded, set features.Set) (*Result, error) {
	if model == nil {
		return nil, ErrNoModel
	}

	vector, err := features.ToVector(set, nil, false)
	if err != nil {
		return nil, err
	}

	var (
		fail, pass float64
		estGrade   *float64
	)
	switch {
	case model.Probability != nil:
		fail, pass, err = model.Probability.PredictProba(vector)
		if err != nil {
			return nil, err
		}
	case model.Regression != nil:
		grade, err := model.Regression.PredictGrade(vector)
		if err != nil {
			return nil, err
		}
		pass = GradeToPassProbability(grade)
		fail = 1 - pass
		estGrade = &grade
	default:
		return nil, ErrNoCapability
	}

	result := &Result{
		Score:          pass,
		Label:          Label(pass),
		EstimatedGrade: estGrade,
		Version:        model.Version,
		Details: Details{
			Probabilities:  Probabilities{Fail: fail, Pass: pass},
			EstimatedGrade: estGrade,
		},
	}
	return result, nil
}

// Label maps a pass probability to its human label.
func Label(score float64) string {
	if score >= PassMark {
		return LabelPass
	}
	return LabelFail
}

// GradeToPassProbability converts a predicted grade on the 0-20 scale into
// a pass probability via a logistic curve centered at the passing grade.
func GradeToPassProbability(grade float64) float64 {
	return 1 / (1 + math.Exp(-(grade-passingGrade)/logisticScale))
}
