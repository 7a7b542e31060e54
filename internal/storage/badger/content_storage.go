package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/rxacademy/harvest/internal/interfaces"
	"github.com/rxacademy/harvest/internal/models"
)

// ContentStorage implements the ContentStorage interface for Badger.
// Upserts are keyed by the item's deterministic ID; badgerhold runs each
// Upsert in its own transaction, which makes concurrent writes from
// different scrapers safe without application-level locking.
type ContentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ContentStorage = (*ContentStorage)(nil)

// NewContentStorage creates a new ContentStorage instance
func NewContentStorage(db *BadgerDB, logger arbor.ILogger) *ContentStorage {
	return &ContentStorage{
		db:     db,
		logger: logger,
	}
}

// SaveItem upserts a content item keyed by its ID. On conflict all mutable
// fields are overwritten (last-write-wins); CreatedAt is preserved from the
// first write.
func (s *ContentStorage) SaveItem(item *models.ContentItem) error {
	if item == nil {
		return fmt.Errorf("content item is nil")
	}
	if item.ID == "" {
		return fmt.Errorf("content item ID is required")
	}

	now := time.Now()
	var existing models.ContentItem
	if err := s.db.Store().Get(item.ID, &existing); err == nil {
		item.CreatedAt = existing.CreatedAt
	} else if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if err := s.db.Store().Upsert(item.ID, item); err != nil {
		return fmt.Errorf("failed to save content item: %w", err)
	}
	return nil
}

// SaveItems writes a batch one item at a time. One item's failure is logged
// and does not prevent subsequent items from being attempted. Returns the
// count of successful writes and any per-item errors.
func (s *ContentStorage) SaveItems(items []*models.ContentItem) (int, []error) {
	saved := 0
	var errs []error

	for _, item := range items {
		if err := s.SaveItem(item); err != nil {
			s.logger.Warn().
				Err(err).
				Str("url", itemURL(item)).
				Msg("Failed to save content item, continuing batch")
			errs = append(errs, err)
			continue
		}
		saved++
	}

	return saved, errs
}

// GetItem retrieves a content item by ID
func (s *ContentStorage) GetItem(id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("content item not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return &item, nil
}

// ListItems returns content items matching the given options
func (s *ContentStorage) ListItems(opts *interfaces.ListOptions) ([]*models.ContentItem, error) {
	query := badgerhold.Where("ID").Ne("") // Select all

	if opts != nil {
		if opts.SourceType != "" {
			query = query.And("SourceType").Eq(models.SourceType(opts.SourceType))
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var items []models.ContentItem
	if err := s.db.Store().Find(&items, query); err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}

	result := make([]*models.ContentItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

// Stats returns item counts by source for the status surface
func (s *ContentStorage) Stats() (*models.ContentStats, error) {
	var items []models.ContentItem
	if err := s.db.Store().Find(&items, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}

	stats := &models.ContentStats{
		ItemsBySource: make(map[string]int),
	}
	for i := range items {
		stats.TotalItems++
		stats.ItemsBySource[string(items[i].SourceType)]++
		if items[i].UpdatedAt.After(stats.LastUpdated) {
			stats.LastUpdated = items[i].UpdatedAt
		}
	}
	return stats, nil
}

func itemURL(item *models.ContentItem) string {
	if item == nil {
		return ""
	}
	return item.URL
}
