package command

import (
	"context"
	"errors"
	"time"

	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/features"
	"github.com/unitrack/unitrack-api/internal/domain/inference"
	"github.com/unitrack/unitrack-api/internal/domain/prediction"
	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
	"github.com/unitrack/unitrack-api/internal/domain/user"
	"github.com/unitrack/unitrack-api/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WHAT-IF COMMAND
// Re-runs a prediction with hypothetical adjustments. Deltas naming profile
// fields are applied to a copy of the profile which is then re-mapped, so
// derived features move together; deltas naming raw features are added
// directly. The stored profile is never modified.
// ══════════════════════════════════════════════════════════════════════════════

// WhatIfCommand contains the data for a hypothetical prediction.
type WhatIfCommand struct {
	// UserID is the authenticated caller.
	UserID string

	// Email backs placeholder account creation.
	Email string

	// CourseCode is the course to predict.
	CourseCode string

	// Deltas are additive adjustments keyed by profile field or raw
	// feature name, e.g. {"promedio_general": 1.5}.
	Deltas map[string]float64

	// Features optionally provides a raw baseline for callers without a
	// stored profile.
	Features map[string]any
}

// Validate validates the command.
func (c WhatIfCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("what_if: user_id is required")
	}
	if len(c.Deltas) == 0 {
		return errors.New("what_if: at least one delta is required")
	}
	if c.CourseCode == "" && len(c.Features) == 0 {
		return errors.New("what_if: course code is required")
	}
	return nil
}

// WhatIfResult contains the adjusted prediction.
type WhatIfResult struct {
	CourseCode string
	Deltas     map[string]float64
	Prediction *prediction.Result
	CreatedAt  time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// WhatIfHandler handles the WhatIfCommand.
type WhatIfHandler struct {
	users      user.Repository
	courses    course.Repository
	profiles   profile.Repository
	inferences inference.Repository
	adjuster   *features.Adjuster
	engine     *prediction.Engine
	log        *logger.Logger
}

// NewWhatIfHandler creates the handler.
func NewWhatIfHandler(
	users user.Repository,
	courses course.Repository,
	profiles profile.Repository,
	inferences inference.Repository,
	adjuster *features.Adjuster,
	engine *prediction.Engine,
	log *logger.Logger,
) *WhatIfHandler {
	if log == nil {
		log = logger.Default()
	}
	return &WhatIfHandler{
		users:      users,
		courses:    courses,
		profiles:   profiles,
		inferences: inferences,
		adjuster:   adjuster,
		engine:     engine,
		log:        log.With(logger.Component("what_if")),
	}
}

// Handle executes the command.
func (h *WhatIfHandler) Handle(ctx context.Context, cmd WhatIfCommand) (*WhatIfResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.users.GetOrCreate(ctx, cmd.UserID, cmd.Email); err != nil {
		return nil, err
	}

	code := course.Normalize(cmd.CourseCode)
	if code != "" {
		if _, err := h.courses.GetOrCreate(ctx, code); err != nil {
			return nil, err
		}
	}

	var (
		doc  profile.Document
		base features.Set
	)
	stored, err := h.profiles.GetByUserID(ctx, cmd.UserID)
	switch {
	case err == nil:
		doc = stored.Data
	case shared.IsNotFound(err):
		if len(cmd.Features) == 0 {
			return nil, shared.ErrProfileNotFound
		}
		base, err = features.CoerceSet(cmd.Features)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	adjusted, err := h.adjuster.Adjust(doc, base, cmd.Deltas, code)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Predict(adjusted)
	if err != nil {
		return nil, err
	}
	result.Details.Deltas = cmd.Deltas

	h.appendAudit(ctx, cmd.UserID, code, adjusted, cmd.Deltas, result)

	return &WhatIfResult{
		CourseCode: code,
		Deltas:     cmd.Deltas,
		Prediction: result,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (h *WhatIfHandler) appendAudit(
	ctx context.Context,
	userID, code string,
	set features.Set,
	deltas map[string]float64,
	result *prediction.Result,
) {
	if h.inferences == nil {
		return
	}

	input := make(map[string]any, len(set)+1)
	for k, v := range set {
		input[k] = v
	}
	input["deltas"] = deltas

	output := map[string]any{
		"prediction_label": result.Label,
		"score":            result.Score,
		"probabilities": map[string]any{
			"fail": result.Details.Probabilities.Fail,
			"pass": result.Details.Probabilities.Pass,
		},
	}
	if result.EstimatedGrade != nil {
		output["estimated_grade"] = *result.EstimatedGrade
	}

	rec := &inference.Record{
		UserID:     userID,
		CourseCode: code,
		Input:      input,
		Output:     output,
		Version:    result.Version,
	}
	if err := h.inferences.Append(ctx, rec); err != nil {
		h.log.Warn("inference append failed",
			logger.UserID(userID),
			logger.CourseCode(code),
			logger.Err(err),
		)
	}
}
