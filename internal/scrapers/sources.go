package scrapers

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/rxacademy/harvest/internal/common"
	"github.com/rxacademy/harvest/internal/extract"
	"github.com/rxacademy/harvest/internal/fetcher"
	"github.com/rxacademy/harvest/internal/interfaces"
	"github.com/rxacademy/harvest/internal/models"
)

// NewSourceScraper builds a scraper for one configured source. Each scraper
// owns its own Fetcher so rate limits and browser lifecycle are scoped to a
// single scraper instance.
func NewSourceScraper(
	source common.SourceConfig,
	fetcherCfg common.FetcherConfig,
	extractCfg common.ExtractConfig,
	storage interfaces.ContentStorage,
	logger arbor.ILogger,
) (*SiteScraper, error) {
	sourceType := models.SourceType(source.Type)
	switch sourceType {
	case models.SourceMOH, models.SourceHSA, models.SourceNDF, models.SourceSPC:
	default:
		return nil, fmt.Errorf("unknown source type %q for source %s", source.Type, source.Name)
	}

	f := fetcher.New(fetcherCfg, logger)
	robots := fetcher.NewRobotsChecker(fetcherCfg.UserAgent, fetcherCfg.CheckRobots, logger)
	profile := extract.ProfileForSource(sourceType)
	extractor := extract.NewExtractor(profile, extractCfg.MinContentLength, f, logger)

	return NewSiteScraper(Config{
		Name:      source.Name,
		Source:    sourceType,
		URLs:      source.URLs,
		RenderJS:  source.RenderJS,
		Fetcher:   f,
		Robots:    robots,
		Extractor: extractor,
		Storage:   storage,
		Logger:    logger,
	}), nil
}

// NewMOHScraper creates a scraper for Ministry of Health guideline pages.
func NewMOHScraper(urls []string, fetcherCfg common.FetcherConfig, extractCfg common.ExtractConfig, storage interfaces.ContentStorage, logger arbor.ILogger) (*SiteScraper, error) {
	return NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: string(models.SourceMOH),
		URLs: urls,
	}, fetcherCfg, extractCfg, storage, logger)
}

// NewHSAScraper creates a scraper for Health Sciences Authority safety
// alerts. HSA pages are JavaScript-rendered, so the headless browser is used.
func NewHSAScraper(urls []string, fetcherCfg common.FetcherConfig, extractCfg common.ExtractConfig, storage interfaces.ContentStorage, logger arbor.ILogger) (*SiteScraper, error) {
	return NewSourceScraper(common.SourceConfig{
		Name:     "hsa-alerts",
		Type:     string(models.SourceHSA),
		URLs:     urls,
		RenderJS: true,
	}, fetcherCfg, extractCfg, storage, logger)
}

// NewNDFScraper creates a scraper for National Drug Formulary entries.
func NewNDFScraper(urls []string, fetcherCfg common.FetcherConfig, extractCfg common.ExtractConfig, storage interfaces.ContentStorage, logger arbor.ILogger) (*SiteScraper, error) {
	return NewSourceScraper(common.SourceConfig{
		Name: "ndf-formulary",
		Type: string(models.SourceNDF),
		URLs: urls,
	}, fetcherCfg, extractCfg, storage, logger)
}
