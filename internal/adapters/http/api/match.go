// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chironhq/chiron/internal/adapters/repository"
	"github.com/chironhq/chiron/internal/domain/model"
)

// MatchHandler handles bulk matching and match lookups.
type MatchHandler struct {
	deps Dependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// bulkMatchResponse mirrors the wire schema for POST /match/bulk.
type bulkMatchResponse struct {
	Matches []model.Match `json:"matches"`
	Count   int           `json:"count"`
}

// HandleBulkMatch handles POST /match/bulk requests.
func (h *MatchHandler) HandleBulkMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.bulk_match"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	matches, err := h.deps.MatchBulk(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, bulkMatchResponse{Matches: matches, Count: len(matches)})
}

// HandleGetMatch handles GET /match/{mentee_id} requests.
func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /match/
	menteeID := strings.TrimPrefix(r.URL.Path, "/match/")
	if menteeID == "" || strings.Contains(menteeID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	match, err := h.deps.Match(r.Context(), menteeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, match)
}
