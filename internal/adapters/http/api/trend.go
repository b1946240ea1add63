// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// TrendHandler handles delta trend requests.
type TrendHandler struct {
	deps Dependencies
}

// NewTrendHandler creates a new delta trend handler.
func NewTrendHandler(deps Dependencies) *TrendHandler {
	return &TrendHandler{deps: deps}
}

// HandleGetTrend handles GET /api/v1/delta/trend requests.
func (h *TrendHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_delta_trend"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	season, err := intParam(r, "season")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, NewParam("playerId", "missing playerId")))
		return
	}
	weekFrom, err := intParam(r, "weekFrom")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	weekTo, err := intParam(r, "weekTo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}

	meta, points, err := h.deps.DeltaTrend(r.Context(), season, playerID, weekFrom, weekTo)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Metadata: meta, Data: points})
}
