// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	service "github.com/openflank/fire/internal/app"
)

// ScoresHandler handles batch score requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new batch scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleGetScores handles GET /api/v1/scores requests.
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scores"
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
	position, err := positionParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	preset, err := presetParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}

	meta, scores, err := h.deps.ScoreBatch(r.Context(), service.ScoreQuery{
		Season:     season,
		AnchorWeek: anchorWeek,
		Position:   position,
		PlayerIDs:  playerIDsParam(r),
		Preset:     preset,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Metadata: meta, Data: scores})
}
