// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/openflank/fire/internal/app"
	"github.com/openflank/fire/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreBatch(ctx context.Context, q service.ScoreQuery) (service.Metadata, []model.PlayerScore, error)
	ScorePlayer(ctx context.Context, season, anchorWeek int, playerID string, preset model.ScoringPreset) (service.Metadata, model.PlayerScore, error)
	DeltaBatch(ctx context.Context, q service.DeltaQuery) (service.Metadata, []model.DeltaSignal, int, error)
	DeltaTrend(ctx context.Context, season int, playerID string, weekFrom, weekTo int) (service.Metadata, []model.DeltaTrendPoint, error)
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	scoresHandler *ScoresHandler
	scoreHandler  *ScoreHandler
	deltaHandler  *DeltaHandler
	trendHandler  *TrendHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxDeltaLimit int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		scoresHandler: NewScoresHandler(deps),
		scoreHandler:  NewScoreHandler(deps),
		deltaHandler:  NewDeltaHandler(deps, maxDeltaLimit),
		trendHandler:  NewTrendHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/scores", MetricsMiddleware(s.scoresHandler.HandleGetScores, "scores"))
	mux.HandleFunc("/api/v1/score", MetricsMiddleware(s.scoreHandler.HandleGetScore, "score"))
	mux.HandleFunc("/api/v1/delta", MetricsMiddleware(s.deltaHandler.HandleGetDelta, "delta"))
	mux.HandleFunc("/api/v1/delta/trend", MetricsMiddleware(s.trendHandler.HandleGetTrend, "delta_trend"))
}

// envelope is the standard response shape: a metadata block describing
// the resolved request plus the payload.
type envelope struct {
	Metadata   service.Metadata `json:"metadata"`
	Data       any              `json:"data"`
	Pagination *pageInfo        `json:"pagination,omitempty"`
}

type pageInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Field: errorField(err)})
}

// errorField pulls the offending field name out of a parameter or
// engine validation error.
func errorField(err error) string {
	var pe *ParamError
	if errors.As(err, &pe) {
		return pe.Name
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// writeServiceError maps engine error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, service.ErrComputation):
		writeError(w, http.StatusInternalServerError, "computation_error", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// intParam parses a required integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if strings.TrimSpace(raw) == "" {
		return 0, NewParam(name, "missing "+name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapParam(name, name+" must be an integer", err)
	}
	return v, nil
}

// optionalIntParam parses an optional integer query parameter, returning
// def when absent.
func optionalIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapParam(name, name+" must be an integer", err)
	}
	return v, nil
}

// positionParam parses an optional position filter.
func positionParam(r *http.Request) (*model.Position, error) {
	raw := r.URL.Query().Get("position")
	if raw == "" {
		return nil, nil
	}
	pos, err := model.ParsePosition(raw)
	if err != nil {
		return nil, WrapParam("position", "position", err)
	}
	return &pos, nil
}

// presetParam parses the optional scoring preset.
func presetParam(r *http.Request) (model.ScoringPreset, error) {
	preset, err := model.ParsePreset(r.URL.Query().Get("scoringPreset"))
	if err != nil {
		return "", WrapParam("scoringPreset", "scoringPreset", err)
	}
	return preset, nil
}

// playerIDsParam parses the optional comma-separated player id list.
func playerIDsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("playerIds")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
