// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	service "github.com/openflank/fire/internal/app"
)

// defaultDeltaLimit is the page size when the caller omits limit.
const defaultDeltaLimit = 25

// DeltaHandler handles delta batch requests.
type DeltaHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewDeltaHandler creates a new delta batch handler.
func NewDeltaHandler(deps Dependencies, maxLimit int) *DeltaHandler {
	return &DeltaHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetDelta handles GET /api/v1/delta requests.
func (h *DeltaHandler) HandleGetDelta(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_delta"
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
	limit, err := optionalIntParam(r, "limit", defaultDeltaLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, NewParam("limit", "limit must be a positive integer")))
		return
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", Wrap(op, NewParam("limit", fmt.Sprintf("limit must not exceed %d", h.maxLimit))))
		return
	}
	offset, err := optionalIntParam(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, NewParam("offset", "offset must be a non-negative integer")))
		return
	}

	meta, signals, total, err := h.deps.DeltaBatch(r.Context(), service.DeltaQuery{
		Season:     season,
		AnchorWeek: anchorWeek,
		Position:   position,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Metadata:   meta,
		Data:       signals,
		Pagination: &pageInfo{Limit: limit, Offset: offset, Total: total},
	})
}
