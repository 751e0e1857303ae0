// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chironhq/chiron/internal/adapters/repository"
)

// DoubtsHandler handles doubt submissions.
type DoubtsHandler struct {
	deps Dependencies
}

// NewDoubtsHandler creates a new doubts handler.
func NewDoubtsHandler(deps Dependencies) *DoubtsHandler {
	return &DoubtsHandler{deps: deps}
}

// doubtRequest mirrors the wire schema for POST /doubts.
type doubtRequest struct {
	DoubtID  string `json:"doubt_id"`
	MenteeID string `json:"mentee_id"`
	Doubt    string `json:"doubt"`
}

func (d doubtRequest) validate() error {
	switch {
	case strings.TrimSpace(d.DoubtID) == "":
		return errors.New("missing doubt_id")
	case strings.TrimSpace(d.MenteeID) == "":
		return errors.New("missing mentee_id")
	case strings.TrimSpace(d.Doubt) == "":
		return errors.New("missing doubt")
	}
	return nil
}

// HandlePostDoubt handles POST /doubts requests. Submissions are idempotent
// by doubt_id; a duplicate returns without re-running classification.
func (h *DoubtsHandler) HandlePostDoubt(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_doubt"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req doubtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.DoubtID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	outcome, err := h.deps.SubmitDoubt(r.Context(), req.MenteeID, req.Doubt)
	if err != nil {
		// Rollback the "seen" status so the submission can be retried.
		h.deps.Unrecord(r.Context(), req.DoubtID)
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
