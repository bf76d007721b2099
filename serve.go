package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"resultflow/commontypes"
	"resultflow/session"
)

type server struct {
	app     *app
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

func newServer(a *app, timeout time.Duration, perSecond float64, burst int, logger *slog.Logger) *server {
	return &server{
		app:     a,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		timeout: timeout,
		logger:  logger,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleQuery)
	mux.HandleFunc("/activate", s.handleActivate)
	return mux
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !s.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	query := r.URL.Query().Get("q")

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	set := s.app.session.Query(ctx, query)
	results := commontypes.FromResultSet(set, s.app.icons)

	// Only show "no results" if there was an actual query.
	if len(results) == 0 && query != "" {
		results = append(results, commontypes.NoResults(query, noResultsIconPath))
	}

	s.writeJSON(w, http.StatusOK, results)
}

func (s *server) handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commontypes.ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, commontypes.ActivateResponse{Error: "invalid request body"})
		return
	}
	setID, err := uuid.Parse(req.Set)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, commontypes.ActivateResponse{Error: "invalid result set id"})
		return
	}

	err = s.app.session.Activate(r.Context(), session.Ref{Set: setID, Index: req.Index, Child: req.ChildIndex()})
	switch {
	case errors.Is(err, session.ErrStaleResult):
		s.writeJSON(w, http.StatusConflict, commontypes.ActivateResponse{Error: err.Error()})
	case errors.Is(err, session.ErrNoSuchItem):
		s.writeJSON(w, http.StatusNotFound, commontypes.ActivateResponse{Error: err.Error()})
	case err != nil:
		// The effect failed but activation happened; the window still goes away.
		s.writeJSON(w, http.StatusOK, commontypes.ActivateResponse{Hide: true, Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusOK, commontypes.ActivateResponse{Hide: true})
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding JSON response", "error", err)
	}
}

func (s *server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
