// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chironhq/chiron/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	// Idempotency tracking for doubt submissions and profile events.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// Matching operations.
	SubmitDoubt(ctx context.Context, menteeID, doubt string) (model.Outcome, error)
	MatchBulk(ctx context.Context) ([]model.Match, error)
	Match(ctx context.Context, menteeID string) (model.Match, error)
	OfflineCandidates(ctx context.Context, menteeID string) ([]model.Candidate, error)

	// Participant management.
	UpsertMentee(ctx context.Context, m model.Mentee) error
	UpsertMentor(ctx context.Context, m model.Mentor) error

	// EnqueueProfileEvent pushes a mentor profile event for async
	// classification. Returns false on backpressure.
	EnqueueProfileEvent(ctx context.Context, e model.ProfileEvent) bool

	// Stats exposes engine occupancy for the stats endpoint.
	Stats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	doubtsHandler       *DoubtsHandler
	matchHandler        *MatchHandler
	candidatesHandler   *CandidatesHandler
	participantsHandler *ParticipantsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		doubtsHandler:       NewDoubtsHandler(deps),
		matchHandler:        NewMatchHandler(deps),
		candidatesHandler:   NewCandidatesHandler(deps),
		participantsHandler: NewParticipantsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/doubts", MetricsMiddleware(s.doubtsHandler.HandlePostDoubt, "doubts"))
	mux.HandleFunc("/match/bulk", MetricsMiddleware(s.matchHandler.HandleBulkMatch, "match_bulk"))
	mux.HandleFunc("/match/", MetricsMiddleware(s.matchHandler.HandleGetMatch, "match"))
	mux.HandleFunc("/candidates/", MetricsMiddleware(s.candidatesHandler.HandleGetCandidates, "candidates"))
	mux.HandleFunc("/mentees/", MetricsMiddleware(s.participantsHandler.HandleMentee, "mentees"))
	mux.HandleFunc("/mentors/", MetricsMiddleware(s.participantsHandler.HandleMentor, "mentors"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
