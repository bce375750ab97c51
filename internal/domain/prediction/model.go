// Package prediction contains the prediction engine: it feeds feature
// vectors to the loaded model and normalizes the output into a labeled,
// explainable result. This is a pure domain layer with zero external
// dependencies.
package prediction

import "errors"

// Domain errors for the prediction package.
var (
	// ErrNoCapability is returned when a loaded model exposes neither a
	// probability nor a regression capability. This is a configuration
	// error: the artifact is unusable and operators should be alerted,
	// not a request to retry.
	ErrNoCapability = errors.New("prediction: model exposes neither probability nor regression capability")

	// ErrNoModel is returned when prediction is attempted without a
	// loaded model.
	ErrNoModel = errors.New("prediction: no model loaded")
)

// ProbabilityModel is a classifier: it scores a feature vector into a
// (fail, pass) probability pair.
type ProbabilityModel interface {
	// PredictProba returns the fail and pass probabilities for one
	// feature vector. The two values sum to 1.
	PredictProba(vector []float64) (fail, pass float64, err error)
}

// RegressionModel is a regressor: it predicts a numeric course grade on the
// 0-20 scale.
type RegressionModel interface {
	// PredictGrade returns the estimated grade for one feature vector.
	PredictGrade(vector []float64) (float64, error)
}

// Loaded is a model artifact with its capability resolved at load time.
// Exactly one of Probability or Regression is non-nil for a usable model;
// per-call type inspection is deliberately avoided.
type Loaded struct {
	// Probability is set when the artifact is a classifier.
	Probability ProbabilityModel

	// Regression is set when the artifact is a regressor.
	Regression RegressionModel

	// Version tags the artifact; the mock predictor reports "mock".
	Version string
}

// Usable reports whether the model exposes at least one capability.
func (l *Loaded) Usable() bool {
	return l != nil && (l.Probability != nil || l.Regression != nil)
}

// Provider supplies the process-wide model. Implementations must load the
// artifact at most once and cache it; Version is fixed for the process
// lifetime unless explicitly reset.
type Provider interface {
	Model() (*Loaded, error)
	Version() string
}
