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
	"github.com/unitrack/unitrack-api/internal/domain/user"
	"github.com/unitrack/unitrack-api/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREDICT COMMAND
// Runs a pass/fail prediction for one course. Features come from the stored
// profile by default; a client may instead submit a raw feature payload.
// Every prediction is appended to the inference log, but a failed append
// never fails the prediction itself.
// ══════════════════════════════════════════════════════════════════════════════

// PredictCommand contains the data for one prediction.
type PredictCommand struct {
	// UserID is the authenticated caller.
	UserID string

	// Email backs placeholder account creation for externally
	// authenticated callers.
	Email string

	// CourseCode is the course to predict, e.g. "CS1101".
	CourseCode string

	// Features optionally overrides the profile-derived feature set.
	// Values must be numeric (or numeric strings).
	Features map[string]any
}

// Validate validates the command.
func (c PredictCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("predict: user_id is required")
	}
	if c.CourseCode == "" && len(c.Features) == 0 {
		return errors.New("predict: course code is required")
	}
	return nil
}

// PredictResult contains the prediction outcome.
type PredictResult struct {
	CourseCode string
	Prediction *prediction.Result
	CreatedAt  time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// PredictHandler handles the PredictCommand.
type PredictHandler struct {
	users      user.Repository
	courses    course.Repository
	profiles   profile.Repository
	inferences inference.Repository
	mapper     *features.Mapper
	engine     *prediction.Engine
	log        *logger.Logger
}

// NewPredictHandler creates the handler.
func NewPredictHandler(
	users user.Repository,
	courses course.Repository,
	profiles profile.Repository,
	inferences inference.Repository,
	mapper *features.Mapper,
	engine *prediction.Engine,
	log *logger.Logger,
) *PredictHandler {
	if log == nil {
		log = logger.Default()
	}
	return &PredictHandler{
		users:      users,
		courses:    courses,
		profiles:   profiles,
		inferences: inferences,
		mapper:     mapper,
		engine:     engine,
		log:        log.With(logger.Component("predict")),
	}
}

// Handle executes the command.
func (h *PredictHandler) Handle(ctx context.Context, cmd PredictCommand) (*PredictResult, error) {
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

	set, err := h.resolveFeatures(ctx, cmd, code)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Predict(set)
	if err != nil {
		return nil, err
	}

	h.appendInference(ctx, cmd.UserID, code, set, nil, result)

	return &PredictResult{
		CourseCode: code,
		Prediction: result,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// resolveFeatures builds the feature set: the request payload wins when
// present, otherwise the stored profile is mapped.
func (h *PredictHandler) resolveFeatures(ctx context.Context, cmd PredictCommand, code string) (features.Set, error) {
	if len(cmd.Features) > 0 {
		return features.CoerceSet(cmd.Features)
	}

	stored, err := h.profiles.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	return h.mapper.Map(stored.Data, code)
}

// appendInference writes the audit record. Failures are logged, never
// surfaced: the prediction already happened.
func (h *PredictHandler) appendInference(
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
	if len(deltas) > 0 {
		input["deltas"] = deltas
	}

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
