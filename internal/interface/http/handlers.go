package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/unitrack/unitrack-api/internal/application/command"
	"github.com/unitrack/unitrack-api/internal/application/query"
	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/features"
	"github.com/unitrack/unitrack-api/internal/domain/prediction"
	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
	"github.com/unitrack/unitrack-api/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service": "unitrack-api",
		"status":  "running",
		"docs":    "/api/v1",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":    "healthy",
		"uptime":    s.Uptime().String(),
		"timestamp": time.Now().UTC(),
	}
	if s.deps.Model != nil {
		status["model_version"] = s.deps.Model.Version()
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Ping(r.Context()); err != nil {
			status["cache"] = "unreachable"
		} else {
			status["cache"] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RegisterUserCommand{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := s.deps.RegisterUser.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":      result.UserID,
		"email":        result.Email,
		"full_name":    result.FullName,
		"access_token": result.Token,
		"token_type":   "bearer",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.LoginUserCommand{Email: req.Email, Password: req.Password}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := s.deps.LoginUser.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":      result.UserID,
		"email":        result.Email,
		"full_name":    result.FullName,
		"access_token": result.Token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	u, err := s.deps.Users.GetOrCreate(r.Context(), identity.ID.String(), identity.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":   u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
		"is_active": u.IsActive,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDICTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type predictRequest struct {
	CourseCode string         `json:"cod_curso"`
	Features   map[string]any `json:"features,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	var req predictRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.PredictCommand{
		UserID:     identity.ID.String(),
		Email:      identity.Email,
		CourseCode: req.CourseCode,
		Features:   req.Features,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := s.deps.Predict.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionPayload(result.CourseCode, result.Prediction))
}

type whatIfRequest struct {
	CourseCode string             `json:"cod_curso"`
	Deltas     map[string]float64 `json:"deltas"`
	Features   map[string]any     `json:"features,omitempty"`
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	var req whatIfRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.WhatIfCommand{
		UserID:     identity.ID.String(),
		Email:      identity.Email,
		CourseCode: req.CourseCode,
		Deltas:     req.Deltas,
		Features:   req.Features,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := s.deps.WhatIf.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	payload := predictionPayload(result.CourseCode, result.Prediction)
	payload["deltas"] = result.Deltas
	writeJSON(w, http.StatusOK, payload)
}

// predictionPayload builds the wire shape shared by predict and what-if.
func predictionPayload(code string, p *prediction.Result) map[string]any {
	payload := map[string]any{
		"cod_curso":        code,
		"prediction_label": p.Label,
		"score":            p.Score,
		"version":          p.Version,
		"details":          p.Details,
		"max_grade":        prediction.MaxGrade,
	}
	if p.EstimatedGrade != nil {
		payload["estimated_grade"] = *p.EstimatedGrade
	}
	return payload
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	stored, err := s.deps.GetProfile.Handle(r.Context(), query.GetProfileQuery{UserID: identity.ID.String()})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         stored.ID,
		"user_id":    stored.UserID,
		"data":       stored.Data,
		"created_at": stored.CreatedAt,
		"updated_at": stored.UpdatedAt,
	})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	var simplified profile.Simplified
	if !s.decodeBody(w, r, &simplified) {
		return
	}

	cmd := command.SaveProfileCommand{
		UserID:  identity.ID.String(),
		Email:   identity.Email,
		Profile: simplified,
	}
	if err := cmd.Profile.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := s.deps.SaveProfile.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"id":         result.ProfileID,
		"user_id":    result.UserID,
		"data":       result.Data,
		"updated_at": result.UpdatedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleEligibleCourses(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	q := query.GetEligibleCoursesQuery{
		UserID: identity.ID.String(),
		Window: getQueryParamInt(r, "max_next_semesters", course.DefaultSemesterWindow),
	}
	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := s.deps.EligibleCourses.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, map[string]any{
		"courses":     result.Courses,
		"has_profile": result.HasProfile,
	}, &ResponseMeta{TotalCount: result.Total})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListCourses.Handle(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, map[string]any{
		"courses": result.Courses,
	}, &ResponseMeta{TotalCount: result.Total})
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY HANDLER
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing identity")
		return
	}

	q := query.GetHistoryQuery{
		UserID: identity.ID.String(),
		Limit:  getQueryParamInt(r, "limit", 0),
		Offset: getQueryParamInt(r, "offset", 0),
	}

	page, err := s.deps.GetHistory.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, map[string]any{
			"id":         rec.ID,
			"cod_curso":  rec.CourseCode,
			"input":      rec.Input,
			"output":     rec.Output,
			"version":    rec.Version,
			"created_at": rec.CreatedAt,
		})
	}

	writeJSONWithMeta(w, r, http.StatusOK, map[string]any{
		"items": items,
	}, &ResponseMeta{
		TotalCount: page.Total,
		PageSize:   page.Limit,
		HasMore:    page.Offset+len(page.Items) < page.Total,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HANDLER PLUMBING
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes the JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *features.MissingFeaturesError

	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.As(err, &missing),
		errors.Is(err, features.ErrEmptyFeatures),
		errors.Is(err, features.ErrInvalidFeatureValue),
		errors.Is(err, course.ErrInvalidWindow),
		shared.IsValidation(err):
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case shared.IsConfiguration(err),
		errors.Is(err, prediction.ErrNoCapability),
		errors.Is(err, prediction.ErrNoModel):
		s.logger.Error("configuration error", logger.Err(err), logger.String("path", r.URL.Path))
		writeJSONError(w, http.StatusInternalServerError, "configuration_error", "Service is misconfigured")
	default:
		s.logger.Error("request failed", logger.Err(err), logger.String("path", r.URL.Path))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
