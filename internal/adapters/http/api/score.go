// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ScoreHandler handles single-player score requests.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new single-player score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleGetScore handles GET /api/v1/score requests. Unknown players
// come back as an ineligible shape, not an error.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	season, err := intParam(r, "season")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	anchorWeek, err := intParam(r, "anchorWeek")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, NewParam("playerId", "missing playerId")))
		return
	}
	preset, err := presetParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}

	meta, score, err := h.deps.ScorePlayer(r.Context(), season, anchorWeek, playerID, preset)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Metadata: meta, Data: score})
}
