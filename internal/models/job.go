package models

import (
	"time"
)

// JobStatus represents the lifecycle state of a scrape job.
type JobStatus string

const (
	JobStatusIdle    JobStatus = "idle"
	JobStatusRunning JobStatus = "running"
	JobStatusError   JobStatus = "error"
)

// ScrapeJob is a scheduler registry entry: a named scraper plus its cron
// schedule. Jobs are created at scheduler initialization and disabled rather
// than removed for the process lifetime.
type ScrapeJob struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	SourceType  SourceType `json:"source_type"`
	Schedule    string     `json:"schedule"` // five-field cron expression
	Enabled     bool       `json:"enabled"`
	Status      JobStatus  `json:"status"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`

	// Placeholder marks a job registered without a scraper implementation.
	// Placeholder jobs appear in status reporting but are never scheduled
	// or triggered.
	Placeholder bool `json:"placeholder"`
}

// ScrapeResult records the outcome of one job run. Results are operational
// telemetry held in the scheduler's bounded history, not business data.
type ScrapeResult struct {
	ID        string        `json:"id"`
	JobName   string        `json:"job_name"`
	Success   bool          `json:"success"`
	Count     int           `json:"count"` // items successfully persisted
	Duration  time.Duration `json:"duration"`
	Errors    []string      `json:"errors"`
	Timestamp time.Time     `json:"timestamp"`
}

// Health levels reported by the scheduler's aggregate health check.
const (
	HealthHealthy = "healthy"
	HealthWarning = "warning"
	HealthError   = "error"
)

// SchedulerHealth aggregates job counts and recent run outcomes for the
// operational status surface.
type SchedulerHealth struct {
	Status        string          `json:"status"`
	TotalJobs     int             `json:"total_jobs"`
	EnabledJobs   int             `json:"enabled_jobs"`
	RunningJobs   int             `json:"running_jobs"`
	ErrorJobs     int             `json:"error_jobs"`
	RecentResults []*ScrapeResult `json:"recent_results"`
}
