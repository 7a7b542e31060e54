// Package app wires configuration, storage, scrapers, and the scheduler into
// one application container constructed at process start.
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/rxacademy/harvest/internal/common"
	"github.com/rxacademy/harvest/internal/interfaces"
	"github.com/rxacademy/harvest/internal/models"
	"github.com/rxacademy/harvest/internal/scheduler"
	"github.com/rxacademy/harvest/internal/scrapers"
	badgerstore "github.com/rxacademy/harvest/internal/storage/badger"
)

// App holds the application's long-lived components
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	DB        *badgerstore.BadgerDB
	Storage   interfaces.ContentStorage
	Scheduler *scheduler.Scheduler
}

// New builds the application: opens the content store, constructs one scraper
// per configured source, and registers the scrape jobs. Sources declared
// without URLs are registered as placeholder jobs with no scraper.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}

	storage := badgerstore.NewContentStorage(db, logger)

	sched, err := scheduler.New(config.Scheduler, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	for _, source := range config.Sources {
		var scraper interfaces.Scraper
		if len(source.URLs) > 0 {
			siteScraper, err := scrapers.NewSourceScraper(source, config.Fetcher, config.Extract, storage, logger)
			if err != nil {
				db.Close()
				return nil, err
			}
			scraper = siteScraper
		} else {
			logger.Info().
				Str("source", source.Name).
				Msg("Source has no URLs configured, registering placeholder job")
		}

		job := models.ScrapeJob{
			Name:        source.Name,
			Description: source.Description,
			SourceType:  models.SourceType(source.Type),
			Schedule:    source.Schedule,
			Enabled:     source.Enabled,
		}
		if err := sched.RegisterJob(job, scraper); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to register job %s: %w", source.Name, err)
		}
	}

	return &App{
		Config:    config,
		Logger:    logger,
		DB:        db,
		Storage:   storage,
		Scheduler: sched,
	}, nil
}

// Close releases application resources
func (a *App) Close() error {
	a.Scheduler.Stop()
	return a.DB.Close()
}
