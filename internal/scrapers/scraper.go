// Package scrapers implements the per-source orchestration units that compose
// fetching, extraction, normalization, and persistence for one external
// knowledge source.
package scrapers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rxacademy/harvest/internal/common"
	"github.com/rxacademy/harvest/internal/extract"
	"github.com/rxacademy/harvest/internal/fetcher"
	"github.com/rxacademy/harvest/internal/interfaces"
	"github.com/rxacademy/harvest/internal/models"
	"github.com/rxacademy/harvest/internal/normalize"
)

// SiteScraper scrapes a fixed, ordered list of URLs for one source. URLs are
// processed in declared order; one bad page never aborts the whole source's
// ingestion. Run is safe to call from the scheduler without a surrounding
// recover: all failure is signaled through the returned result.
type SiteScraper struct {
	name      string
	source    models.SourceType
	urls      []string
	renderJS  bool
	fetcher   *fetcher.Fetcher
	robots    *fetcher.RobotsChecker
	extractor *extract.Extractor
	storage   interfaces.ContentStorage
	logger    arbor.ILogger
	running   atomic.Bool
}

// Compile-time interface assertion
var _ interfaces.Scraper = (*SiteScraper)(nil)

// Config assembles the collaborators for one SiteScraper.
type Config struct {
	Name      string
	Source    models.SourceType
	URLs      []string
	RenderJS  bool
	Fetcher   *fetcher.Fetcher
	Robots    *fetcher.RobotsChecker
	Extractor *extract.Extractor
	Storage   interfaces.ContentStorage
	Logger    arbor.ILogger
}

// NewSiteScraper creates a scraper for one source.
func NewSiteScraper(cfg Config) *SiteScraper {
	return &SiteScraper{
		name:      cfg.Name,
		source:    cfg.Source,
		urls:      cfg.URLs,
		renderJS:  cfg.RenderJS,
		fetcher:   cfg.Fetcher,
		robots:    cfg.Robots,
		extractor: cfg.Extractor,
		storage:   cfg.Storage,
		logger:    cfg.Logger,
	}
}

// Name returns the scraper's job name
func (s *SiteScraper) Name() string {
	return s.name
}

// SourceType returns the source this scraper ingests
func (s *SiteScraper) SourceType() models.SourceType {
	return s.source
}

// Run processes every configured URL, persists the collected batch, and
// returns the outcome. Per-URL failures are accumulated in the result's
// error list; only structural failures produce Success=false with Count=0.
// Browser resources are released on every exit path.
func (s *SiteScraper) Run(ctx context.Context) (result *models.ScrapeResult) {
	start := time.Now()
	result = &models.ScrapeResult{
		ID:        common.NewResultID(),
		JobName:   s.name,
		Timestamp: start,
	}

	if !s.running.CompareAndSwap(false, true) {
		result.Errors = append(result.Errors, fmt.Sprintf("scraper %s is already running", s.name))
		result.Duration = time.Since(start)
		return result
	}
	defer s.running.Store(false)
	defer s.fetcher.Close()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("scraper", s.name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scraper run")
			result.Success = false
			result.Count = 0
			result.Errors = append(result.Errors, fmt.Sprintf("structural failure: %v", r))
			result.Duration = time.Since(start)
		}
	}()

	s.logger.Info().
		Str("scraper", s.name).
		Int("urls", len(s.urls)).
		Msg("Scraper run started")

	var items []*models.ContentItem
	for _, url := range s.urls {
		item, err := s.processURL(ctx, url)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("Failed to process URL, continuing")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", url, err))
			continue
		}
		items = append(items, item)
	}

	saved, saveErrs := s.storage.SaveItems(items)
	for _, err := range saveErrs {
		result.Errors = append(result.Errors, err.Error())
	}

	result.Count = saved
	result.Success = saved > 0 || len(result.Errors) == 0
	result.Duration = time.Since(start)

	s.logger.Info().
		Str("scraper", s.name).
		Bool("success", result.Success).
		Int("count", result.Count).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("Scraper run completed")

	return result
}

// processURL runs the per-URL pipeline: robots check, fetch, extract,
// normalize, identity.
func (s *SiteScraper) processURL(ctx context.Context, url string) (*models.ContentItem, error) {
	if !s.robots.Allowed(url) {
		return nil, fmt.Errorf("disallowed by robots.txt")
	}

	var html string
	var err error
	if s.renderJS {
		html, err = s.fetcher.FetchRendered(ctx, url)
	} else {
		html, err = s.fetcher.FetchHTML(ctx, url)
	}
	if err != nil {
		return nil, err
	}

	item, err := s.extractor.Extract(ctx, html, url)
	if err != nil {
		return nil, err
	}

	item.ContentHash = normalize.Hash(item.Content)
	item.ID = common.NewContentID(string(s.source), common.CanonicalSlug(url))
	return item, nil
}
