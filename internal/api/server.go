// Package api exposes the EEG classification service over HTTP: a JSON
// prediction endpoint, a health probe reporting model availability, and a
// websocket endpoint for streaming analysis.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"eegscan/internal/metrics"
	"eegscan/internal/ml"

	"github.com/rs/zerolog/log"
)

// Server provides the HTTP API for EEG predictions.
type Server struct {
	svc      *ml.Service
	metrics  *metrics.Metrics
	maxBody  int64
	upgrader websocketUpgrader
	server   *http.Server
}

// PredictionRequest is the incoming prediction payload. Data is
// channels x samples or samples x channels; orientation is inferred.
type PredictionRequest struct {
	Data        [][]float64 `json:"data"`
	Fs          float64     `json:"fs,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
}

// HealthResponse reports service and model availability.
type HealthResponse struct {
	Status          string    `json:"status"`
	DeepLoaded      bool      `json:"deep_model_loaded"`
	ClassicalLoaded bool      `json:"classical_model_loaded"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewServer creates the API server. maxBody caps request bodies in bytes.
func NewServer(svc *ml.Service, m *metrics.Metrics, port int, maxBody int64) *Server {
	s := &Server{
		svc:      svc,
		metrics:  m,
		maxBody:  maxBody,
		upgrader: newUpgrader(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/eeg/predict", s.handlePredict)
	mux.HandleFunc("/api/eeg/health", s.handleHealth)
	mux.HandleFunc("/api/eeg/stream", s.handleStream)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      withCORS(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the configured handler; used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// withCORS allows browser clients from any origin, matching the upstream
// API surface this service replaces.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.RequestsTotal.Inc()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.ErrorsTotal.Inc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.Data) == 0 {
		s.metrics.ErrorsTotal.Inc()
		writeError(w, http.StatusBadRequest, "data cannot be empty")
		return
	}

	result := s.svc.Predict(req.Data, req.Fs, req.Temperature)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Error().Err(err).Msg("failed to encode prediction response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deep := s.svc.DeepLoaded()
	classical := s.svc.ClassicalLoaded()

	resp := HealthResponse{
		Status:          "ok",
		DeepLoaded:      deep,
		ClassicalLoaded: classical,
		Timestamp:       time.Now().UTC(),
	}
	// The service still answers in degraded mode; only a process with no
	// models at all is reported degraded.
	if !deep && !classical {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode health response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
