package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-video-scraper/internal/registry"
)

// streamScrapeEvents handles GET /events?search_term=. It creates a new job
// and relays the orchestrator's event feed verbatim as SSE data frames,
// finishing with the stream's finished marker. A failed write means the
// client went away; returning cancels the request context, which tells the
// producer to abandon remaining work.
func (s *Server) streamScrapeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	job, err := s.registry.Create()
	if err != nil {
		s.logger.Error("create job failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}
	searchTerm := strings.TrimSpace(r.URL.Query().Get("search_term"))
	listingURL := s.cfg.Scraper.ListingURL(searchTerm)
	s.logger.Info("starting scrape job",
		zap.String("job_id", job.ID),
		zap.String("url", listingURL),
	)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Job-ID", job.ID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for evt := range s.streamer.Stream(r.Context(), job.ID, listingURL) {
		payload, err := evt.Payload()
		if err != nil {
			s.logger.Error("event payload marshal failed", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			s.logger.Warn("event stream write failed, abandoning job",
				zap.String("job_id", job.ID),
				zap.Error(err),
			)
			return
		}
		flusher.Flush()
	}
}

type statusResponse struct {
	Status string  `json:"status"`
	Result *string `json:"result"`
}

// getJobStatus handles GET /status/{job_id}. It returns the job's status and
// result snapshot, or 404 for an unknown id.
func (s *Server) getJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.registry.Get(jobID)
	if err != nil {
		if errors.Is(err, registry.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", zap.String("job_id", jobID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: string(job.Status), Result: job.Result})
}

// downloadVideo handles GET /download/video?video_url=&referer_url=&title=.
// It relays the remote bytes as an attachment; both URL parameters are
// required.
func (s *Server) downloadVideo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	videoURL := q.Get("video_url")
	refererURL := q.Get("referer_url")
	if videoURL == "" || refererURL == "" {
		s.writeError(w, http.StatusBadRequest, "Missing video_url or referer_url.")
		return
	}
	title := q.Get("title")
	if title == "" {
		title = "video"
	}
	if err := s.proxy.Stream(r.Context(), w, videoURL, refererURL, title); err != nil {
		// Stream only errors before the response is committed.
		s.logger.Warn("video download failed", zap.String("url", videoURL), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "failed to fetch video")
	}
}
