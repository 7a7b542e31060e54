package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes. The surface is read-only except
// for the trigger and enable/disable endpoints.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.HandleFunc("GET /api/jobs", s.listJobsHandler)
	mux.HandleFunc("GET /api/jobs/{name}", s.jobStatusHandler)
	mux.HandleFunc("POST /api/jobs/{name}/trigger", s.triggerJobHandler)
	mux.HandleFunc("POST /api/jobs/{name}/enable", s.enableJobHandler)
	mux.HandleFunc("POST /api/jobs/{name}/disable", s.disableJobHandler)
	mux.HandleFunc("GET /api/results", s.recentResultsHandler)
	mux.HandleFunc("GET /api/content", s.listContentHandler)
	mux.HandleFunc("GET /api/content/stats", s.contentStatsHandler)

	return mux
}
