// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chironhq/chiron/internal/adapters/repository"
	"github.com/chironhq/chiron/internal/domain/model"
)

// CandidatesHandler serves pre-matched offline candidates.
type CandidatesHandler struct {
	deps Dependencies
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps Dependencies) *CandidatesHandler {
	return &CandidatesHandler{deps: deps}
}

// candidatesResponse mirrors the wire schema for GET /candidates/{mentee_id}.
type candidatesResponse struct {
	MenteeID   string            `json:"mentee_id"`
	Candidates []model.Candidate `json:"candidates"`
}

// HandleGetCandidates handles GET /candidates/{mentee_id} requests.
func (h *CandidatesHandler) HandleGetCandidates(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_candidates"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /candidates/
	menteeID := strings.TrimPrefix(r.URL.Path, "/candidates/")
	if menteeID == "" || strings.Contains(menteeID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	candidates, err := h.deps.OfflineCandidates(r.Context(), menteeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, candidatesResponse{MenteeID: menteeID, Candidates: candidates})
}
