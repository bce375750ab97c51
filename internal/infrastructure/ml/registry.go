package ml

import (
	"sync"

	"github.com/unitrack/unitrack-api/internal/domain/prediction"
	"github.com/unitrack/unitrack-api/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MODEL REGISTRY
//
// The registry owns the one piece of shared state in the prediction path:
// the loaded model artifact. The artifact is loaded at most once per
// process (check-then-load under lock) and the version tag stays fixed for
// the process lifetime unless Reset is called, which exists for test
// isolation. A missing or unreadable artifact degrades to the mock
// predictor rather than failing the process.
// ══════════════════════════════════════════════════════════════════════════════

// Registry lazily loads and caches the model artifact.
type Registry struct {
	mu    sync.Mutex
	model *prediction.Loaded

	path            string
	fallbackVersion string
	log             *logger.Logger
}

// NewRegistry creates a registry for the artifact at path. fallbackVersion
// is reported when the artifact carries no version of its own.
func NewRegistry(path, fallbackVersion string, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Default()
	}
	return &Registry{
		path:            path,
		fallbackVersion: fallbackVersion,
		log:             log.With(logger.Component("model_registry")),
	}
}

// Model returns the loaded model, loading it on first use. Implements
// prediction.Provider.
func (r *Registry) Model() (*prediction.Loaded, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model != nil {
		return r.model, nil
	}

	if r.path == "" {
		r.log.Warn("no model path configured, serving mock predictor")
		r.model = r.mockModel()
		return r.model, nil
	}

	loaded, err := LoadArtifact(r.path)
	if err != nil {
		r.log.Warn("model artifact unusable, serving mock predictor",
			logger.String("path", r.path),
			logger.Err(err),
		)
		r.model = r.mockModel()
		return r.model, nil
	}

	if loaded.Version == "" {
		loaded.Version = r.fallbackVersion
	}
	r.log.Info("model artifact loaded",
		logger.String("path", r.path),
		logger.ModelVersion(loaded.Version),
	)
	r.model = loaded
	return r.model, nil
}

// Version returns the version tag of the loaded model, loading it first if
// needed. Implements prediction.Provider.
func (r *Registry) Version() string {
	model, err := r.Model()
	if err != nil || model == nil {
		return r.fallbackVersion
	}
	return model.Version
}

// Reset drops the cached model so the next call loads again. For tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.model = nil
}

func (r *Registry) mockModel() *prediction.Loaded {
	return &prediction.Loaded{
		Probability: NewMockModel(),
		Version:     MockVersion,
	}
}
