// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chironhq/chiron/internal/domain/model"
)

// ParticipantsHandler handles mentee/mentor upserts and mentor profile
// events.
type ParticipantsHandler struct {
	deps Dependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps Dependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

// HandleMentee handles PUT /mentees/{mentee_id} requests.
func (h *ParticipantsHandler) HandleMentee(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_mentee"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/mentees/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var mentee model.Mentee
	if err := json.NewDecoder(r.Body).Decode(&mentee); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	mentee.ID = id
	if mentee.Status == "" {
		mentee.Status = model.StatusActive
	}

	if err := h.deps.UpsertMentee(r.Context(), mentee); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// HandleMentor dispatches /mentors/{mentor_id} and
// /mentors/{mentor_id}/profile-events requests.
func (h *ParticipantsHandler) HandleMentor(w http.ResponseWriter, r *http.Request) {
	const op = "api.mentor"
	path := strings.TrimPrefix(r.URL.Path, "/mentors/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if id, ok := strings.CutSuffix(path, "/profile-events"); ok {
		h.handleProfileEvent(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	h.handleUpsertMentor(w, r, path)
}

func (h *ParticipantsHandler) handleUpsertMentor(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.put_mentor"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}

	var mentor model.Mentor
	if err := json.NewDecoder(r.Body).Decode(&mentor); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	mentor.ID = id
	if mentor.Status == "" {
		mentor.Status = model.StatusActive
	}

	if err := h.deps.UpsertMentor(r.Context(), mentor); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "stored"})
}

// profileEventRequest mirrors the wire schema for
// POST /mentors/{id}/profile-events.
type profileEventRequest struct {
	EventID   string   `json:"event_id"`
	JobRole   string   `json:"job_role"`
	Skills    []string `json:"skills"`
	Education string   `json:"education"`
}

func (p profileEventRequest) validate() error {
	if strings.TrimSpace(p.EventID) == "" {
		return errors.New("missing event_id")
	}
	return nil
}

func (h *ParticipantsHandler) handleProfileEvent(w http.ResponseWriter, r *http.Request, mentorID string) {
	const op = "api.post_profile_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if mentorID == "" || strings.Contains(mentorID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var req profileEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	event := model.ProfileEvent{
		EventID:   req.EventID,
		MentorID:  mentorID,
		JobRole:   req.JobRole,
		Skills:    req.Skills,
		Education: req.Education,
		TS:        time.Now().UTC(),
	}
	if ok := h.deps.EnqueueProfileEvent(r.Context(), event); !ok {
		// Rollback the "seen" status since enqueue failed.
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
