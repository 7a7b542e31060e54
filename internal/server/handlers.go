package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rxacademy/harvest/internal/interfaces"
	"github.com/rxacademy/harvest/internal/scheduler"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.app.Scheduler.HealthStatus()

	status := http.StatusOK
	if health.Status == "error" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, health)
}

func (s *Server) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Scheduler.GetAllJobs())
}

func (s *Server) jobStatusHandler(w http.ResponseWriter, r *http.Request) {
	job, err := s.app.Scheduler.GetJobStatus(r.PathValue("name"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

// triggerJobHandler runs a job synchronously out-of-band from its schedule
// and returns the same result shape as a scheduled run.
func (s *Server) triggerJobHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	result, err := s.app.Scheduler.TriggerJob(name)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrJobNotFound):
			s.writeError(w, http.StatusNotFound, err)
		case errors.Is(err, scheduler.ErrJobRunning):
			s.writeError(w, http.StatusConflict, err)
		case errors.Is(err, scheduler.ErrJobDisabled):
			s.writeError(w, http.StatusUnprocessableEntity, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) enableJobHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Scheduler.EnableJob(r.PathValue("name")); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

func (s *Server) disableJobHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Scheduler.DisableJob(r.PathValue("name")); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

func (s *Server) recentResultsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	s.writeJSON(w, http.StatusOK, s.app.Scheduler.RecentResults(limit))
}

func (s *Server) listContentHandler(w http.ResponseWriter, r *http.Request) {
	opts := &interfaces.ListOptions{
		SourceType: r.URL.Query().Get("source"),
		Limit:      100,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			opts.Limit = parsed
		}
	}

	items, err := s.app.Storage.ListItems(opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) contentStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Storage.Stats()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.app.Logger.Warn().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
