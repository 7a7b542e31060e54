package interfaces

import (
	"github.com/rxacademy/harvest/internal/models"
)

// ListOptions filters content listings.
type ListOptions struct {
	SourceType string
	Limit      int
	Offset     int
}

// ContentStorage is the content-store boundary the ingestion pipeline depends
// on: upsert a record by stable id with full-field overwrite on conflict.
type ContentStorage interface {
	// SaveItem upserts a single item keyed by its ID. On conflict all mutable
	// fields are overwritten with the new values (last-write-wins).
	SaveItem(item *models.ContentItem) error

	// SaveItems writes a batch one item at a time. A single item's failure is
	// recorded and does not prevent subsequent items from being attempted.
	// Returns the count of successful writes and the per-item errors.
	SaveItems(items []*models.ContentItem) (int, []error)

	GetItem(id string) (*models.ContentItem, error)
	ListItems(opts *ListOptions) ([]*models.ContentItem, error)
	Stats() (*models.ContentStats, error)
}
