// Package scheduler owns the registry of named scrape jobs, triggers them on
// their cron schedules or on demand, and tracks bounded run history and
// aggregate health.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/rxacademy/harvest/internal/common"
	"github.com/rxacademy/harvest/internal/interfaces"
	"github.com/rxacademy/harvest/internal/models"
)

var (
	// ErrJobNotFound is returned when no job with the given name is registered.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobRunning rejects a trigger for a job that is mid-run. Triggers are
	// rejected synchronously, never queued.
	ErrJobRunning = errors.New("job is already running")
	// ErrJobDisabled rejects triggers for placeholder jobs registered without
	// a scraper implementation.
	ErrJobDisabled = errors.New("job has no scraper implementation")
)

// jobEntry pairs a registered job with its scraper and cron entry
type jobEntry struct {
	job     models.ScrapeJob
	scraper interfaces.Scraper
	cronID  cron.EntryID
}

// Scheduler is constructed once at process start and injected wherever
// triggering or status queries occur. All registry state is process-local
// and reset on restart.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	logger   arbor.ILogger
	history  *resultHistory

	jobMu   sync.Mutex
	jobs    map[string]*jobEntry
	running bool
}

// New creates a scheduler evaluating cron expressions in the configured
// timezone.
func New(cfg common.SchedulerConfig, logger arbor.ILogger) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		location: location,
		logger:   logger,
		history:  newResultHistory(cfg.HistorySize),
		jobs:     make(map[string]*jobEntry),
	}, nil
}

// RegisterJob adds a job to the registry. scraper may be nil, registering a
// placeholder that is visible in status reporting but never scheduled or
// triggered. Jobs are never removed during the process lifetime; they are
// disabled instead.
func (s *Scheduler) RegisterJob(job models.ScrapeJob, scraper interfaces.Scraper) error {
	if err := common.ValidateJobSchedule(job.Schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}

	job.Status = models.JobStatusIdle
	if scraper == nil {
		job.Placeholder = true
		job.Enabled = false
	}

	entry := &jobEntry{job: job, scraper: scraper}

	if job.Enabled {
		name := job.Name
		cronID, err := s.cron.AddFunc(job.Schedule, func() {
			s.runScheduled(name)
		})
		if err != nil {
			return fmt.Errorf("failed to add job to cron: %w", err)
		}
		entry.cronID = cronID
	}

	s.jobs[job.Name] = entry

	s.logger.Info().
		Str("job_name", job.Name).
		Str("schedule", job.Schedule).
		Bool("enabled", job.Enabled).
		Bool("placeholder", job.Placeholder).
		Msg("Job registered")

	return nil
}

// Start begins scheduled triggering
func (s *Scheduler) Start() error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("timezone", s.location.String()).
		Int("jobs", len(s.jobs)).
		Msg("Scheduler started")
	return nil
}

// Stop halts scheduled triggering. Jobs already running complete naturally;
// there is no mid-run cancellation.
func (s *Scheduler) Stop() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// IsRunning returns true if the scheduler is active
func (s *Scheduler) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

// TriggerJob synchronously runs a named job out-of-band from its schedule
// and returns the run result. A job that is already running is rejected with
// ErrJobRunning; its state is left untouched.
func (s *Scheduler) TriggerJob(name string) (*models.ScrapeResult, error) {
	s.logger.Info().Str("job_name", name).Msg("Manual job trigger requested")
	return s.execute(name)
}

// EnableJob enables a disabled job and schedules it
func (s *Scheduler) EnableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return ErrJobNotFound
	}
	if entry.job.Placeholder {
		return ErrJobDisabled
	}
	if entry.job.Enabled {
		return nil
	}

	cronID, err := s.cron.AddFunc(entry.job.Schedule, func() {
		s.runScheduled(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	entry.cronID = cronID
	entry.job.Enabled = true

	s.logger.Info().Str("job_name", name).Msg("Job enabled")
	return nil
}

// DisableJob removes a job from the schedule without removing it from the
// registry.
func (s *Scheduler) DisableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return ErrJobNotFound
	}
	if !entry.job.Enabled {
		return nil
	}

	s.cron.Remove(entry.cronID)
	entry.job.Enabled = false

	s.logger.Info().Str("job_name", name).Msg("Job disabled")
	return nil
}

// GetJobStatus returns a snapshot of one job
func (s *Scheduler) GetJobStatus(name string) (*models.ScrapeJob, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return nil, ErrJobNotFound
	}

	job := entry.job
	job.NextRun = s.nextRunLocked(entry)
	return &job, nil
}

// GetAllJobs returns snapshots of every registered job, sorted by name
func (s *Scheduler) GetAllJobs() []*models.ScrapeJob {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	jobs := make([]*models.ScrapeJob, 0, len(s.jobs))
	for _, entry := range s.jobs {
		job := entry.job
		job.NextRun = s.nextRunLocked(entry)
		jobs = append(jobs, &job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// RecentResults returns up to limit run results, newest first
func (s *Scheduler) RecentResults(limit int) []*models.ScrapeResult {
	return s.history.Recent(limit)
}

// HealthStatus aggregates job counts and recent results. Overall health is
// "error" if any job is in error state, "warning" if more than half the
// enabled jobs are concurrently running, else "healthy".
func (s *Scheduler) HealthStatus() *models.SchedulerHealth {
	s.jobMu.Lock()
	health := &models.SchedulerHealth{Status: models.HealthHealthy}
	for _, entry := range s.jobs {
		health.TotalJobs++
		if entry.job.Enabled {
			health.EnabledJobs++
		}
		switch entry.job.Status {
		case models.JobStatusRunning:
			health.RunningJobs++
		case models.JobStatusError:
			health.ErrorJobs++
		}
	}
	s.jobMu.Unlock()

	if health.ErrorJobs > 0 {
		health.Status = models.HealthError
	} else if health.EnabledJobs > 0 && health.RunningJobs*2 > health.EnabledJobs {
		health.Status = models.HealthWarning
	}

	health.RecentResults = s.history.Recent(10)
	return health
}

// runScheduled is the cron callback. A tick that lands while the previous
// run is still going is skipped; an error result never blocks the next tick.
func (s *Scheduler) runScheduled(name string) {
	if _, err := s.execute(name); err != nil {
		if errors.Is(err, ErrJobRunning) {
			s.logger.Warn().Str("job_name", name).Msg("Scheduled tick skipped, job still running")
			return
		}
		s.logger.Error().Err(err).Str("job_name", name).Msg("Scheduled job execution failed")
	}
}

// execute runs a job end to end: state transition, scraper run with panic
// recovery, result recording. The scraper's own Run never propagates
// failure as an error or panic, but execute still guards against
// programming errors in unexpected places.
func (s *Scheduler) execute(name string) (*models.ScrapeResult, error) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		return nil, ErrJobNotFound
	}
	if entry.job.Placeholder {
		s.jobMu.Unlock()
		return nil, ErrJobDisabled
	}
	if entry.job.Status == models.JobStatusRunning {
		s.jobMu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	entry.job.Status = models.JobStatusRunning
	scraper := entry.scraper
	s.jobMu.Unlock()

	start := time.Now()
	s.logger.Info().Str("job_name", name).Msg("Job execution started")

	var result *models.ScrapeResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("job_name", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Msg("PANIC RECOVERED in job execution")
				result = &models.ScrapeResult{
					ID:        common.NewResultID(),
					JobName:   name,
					Success:   false,
					Errors:    []string{fmt.Sprintf("panic: %v", r)},
					Duration:  time.Since(start),
					Timestamp: start,
				}
			}
		}()
		result = scraper.Run(context.Background())
	}()

	completion := time.Now()
	s.jobMu.Lock()
	entry.job.LastRun = &completion
	if result.Success {
		entry.job.Status = models.JobStatusIdle
		entry.job.LastError = ""
	} else {
		entry.job.Status = models.JobStatusError
		if len(result.Errors) > 0 {
			entry.job.LastError = result.Errors[0]
		}
	}
	s.jobMu.Unlock()

	s.history.Add(result)

	if result.Success {
		s.logger.Info().
			Str("job_name", name).
			Int("count", result.Count).
			Dur("duration", result.Duration).
			Msg("Job execution completed")
	} else {
		s.logger.Error().
			Str("job_name", name).
			Int("errors", len(result.Errors)).
			Dur("duration", result.Duration).
			Msg("Job execution failed")
	}

	return result, nil
}

// nextRunLocked reads the next fire time from cron. Caller holds jobMu.
func (s *Scheduler) nextRunLocked(entry *jobEntry) *time.Time {
	if !entry.job.Enabled {
		return nil
	}
	for _, cronEntry := range s.cron.Entries() {
		if cronEntry.ID == entry.cronID {
			next := cronEntry.Next
			if next.IsZero() {
				return nil
			}
			return &next
		}
	}
	return nil
}
