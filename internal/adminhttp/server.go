// Package adminhttp exposes the server's operational surface: health
// checks, Prometheus scraping, and the dead-letter intake endpoint Cloud
// Tasks posts to.
package adminhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the admin HTTP surface, separate from the gRPC listener.
type Server struct {
	router *mux.Router
	log    *slog.Logger

	mu          sync.Mutex
	deadLetters []deadLetterRecord
}

type deadLetterRecord struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`
}

// New builds the admin router with /healthz, /metrics, and /deadletter.
func New() *Server {
	s := &Server{
		router: mux.NewRouter(),
		log:    slog.With("component", "adminhttp"),
	}

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/deadletter", s.handleDeadLetter).Methods(http.MethodPost)
	s.router.HandleFunc("/deadletter", s.handleListDeadLetters).Methods(http.MethodGet)

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("admin http listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleDeadLetter is the target Cloud Tasks posts to when a job
// exhausts its retry budget (§9 worker retry resolution).
func (s *Server) handleDeadLetter(w http.ResponseWriter, r *http.Request) {
	var rec deadLetterRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.deadLetters = append(s.deadLetters, rec)
	s.mu.Unlock()
	s.log.Warn("job dead-lettered", "job_id", rec.JobID, "reason", rec.Reason)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListDeadLetters(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	json.NewEncoder(w).Encode(s.deadLetters)
}
