package interfaces

import (
	"context"

	"github.com/rxacademy/harvest/internal/models"
)

// Scraper is the per-source orchestration unit: fetch, extract, normalize,
// and persist content for one external knowledge source.
//
// Run never panics and never returns an error value: all failure, including
// structural failure, is signaled through the result. Callers may rely on the
// returned result being non-nil.
type Scraper interface {
	Name() string
	SourceType() models.SourceType
	Run(ctx context.Context) *models.ScrapeResult
}
