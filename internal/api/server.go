// Package api exposes the HTTP interface for the scraper service.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-video-scraper/internal/config"
	"github.com/JakeFAU/realtime-video-scraper/internal/download"
	"github.com/JakeFAU/realtime-video-scraper/internal/metrics"
	"github.com/JakeFAU/realtime-video-scraper/internal/scraper"
)

// EventStreamer produces the event feed for a job. The orchestrator satisfies
// this interface.
type EventStreamer interface {
	Stream(ctx context.Context, jobID, listingURL string) <-chan scraper.Event
}

// Server wires HTTP handlers to the registry, orchestrator, and download
// proxy.
type Server struct {
	router   chi.Router
	registry scraper.JobRegistry
	streamer EventStreamer
	proxy    *download.Proxy
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes. Note there is no
// blanket timeout middleware: the event stream stays open for the life of a
// job.
func NewServer(
	registry scraper.JobRegistry,
	streamer EventStreamer,
	proxy *download.Proxy,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry: registry,
		streamer: streamer,
		proxy:    proxy,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/events", s.streamScrapeEvents)
	r.Get("/status/{job_id}", s.getJobStatus)
	r.Get("/download/video", s.downloadVideo)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// All dependencies are in-memory or created per job.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
