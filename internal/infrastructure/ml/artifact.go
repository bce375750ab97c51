package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/unitrack/unitrack-api/internal/domain/prediction"
)

// Artifact kinds.
const (
	KindClassifier = "classifier"
	KindRegressor  = "regressor"
)

// Artifact loading errors.
var (
	ErrArtifactKind     = errors.New("ml: artifact kind must be classifier or regressor")
	ErrArtifactFeatures = errors.New("ml: artifact feature list and weights disagree")
	ErrVectorWidth      = errors.New("ml: feature vector width does not match artifact")
)

// Artifact is the on-disk model format: a linear model over the named
// features. A classifier passes the linear score through a logistic; a
// regressor clamps it to the 0-20 grade scale. Weights are keyed by feature
// name and applied in lexicographic feature order, matching how the engine
// vectorizes feature sets.
type Artifact struct {
	Version   string             `json:"version"`
	Kind      string             `json:"kind"`
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// LoadArtifact reads and validates a model artifact file and wraps it into
// its capability at load time.
func LoadArtifact(path string) (*prediction.Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ml: read artifact: %w", err)
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("ml: decode artifact: %w", err)
	}
	if len(art.Weights) == 0 {
		return nil, ErrArtifactFeatures
	}

	lm := newLinearModel(&art)
	switch art.Kind {
	case KindClassifier:
		return &prediction.Loaded{Probability: lm, Version: art.Version}, nil
	case KindRegressor:
		return &prediction.Loaded{Regression: lm, Version: art.Version}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrArtifactKind, art.Kind)
	}
}

// linearModel evaluates the artifact's linear score against a vector in
// lexicographic feature order.
type linearModel struct {
	intercept float64
	weights   []float64 // ordered by sorted feature name
}

func newLinearModel(art *Artifact) *linearModel {
	names := make([]string, 0, len(art.Weights))
	for name := range art.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	weights := make([]float64, len(names))
	for i, name := range names {
		weights[i] = art.Weights[name]
	}
	return &linearModel{intercept: art.Intercept, weights: weights}
}

func (m *linearModel) score(vector []float64) (float64, error) {
	if len(vector) != len(m.weights) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrVectorWidth, len(vector), len(m.weights))
	}
	s := m.intercept
	for i, v := range vector {
		s += v * m.weights[i]
	}
	return s, nil
}

// PredictProba implements prediction.ProbabilityModel.
func (m *linearModel) PredictProba(vector []float64) (fail, pass float64, err error) {
	s, err := m.score(vector)
	if err != nil {
		return 0, 0, err
	}
	pass = 1 / (1 + math.Exp(-s))
	return 1 - pass, pass, nil
}

// PredictGrade implements prediction.RegressionModel.
func (m *linearModel) PredictGrade(vector []float64) (float64, error) {
	s, err := m.score(vector)
	if err != nil {
		return 0, err
	}
	return math.Min(math.Max(s, 0), prediction.MaxGrade), nil
}
