package models

import (
	"time"
)

// SourceType identifies the external knowledge source a content item came from.
type SourceType string

const (
	SourceMOH SourceType = "moh" // Ministry of Health clinical practice guidelines
	SourceHSA SourceType = "hsa" // Health Sciences Authority safety alerts
	SourceNDF SourceType = "ndf" // National Drug Formulary entries
	SourceSPC SourceType = "spc" // Product characteristics summaries
)

// ContentItem represents one normalized document ingested from an external source.
// PRIMARY CONTENT FORMAT: normalized plain text (Content field), with a markdown
// rendition kept alongside for downstream display.
type ContentItem struct {
	// Identity - deterministic, derived from source type + canonical slug so
	// re-scraping the same page updates rather than duplicates.
	ID         string     `json:"id"`
	SourceType SourceType `json:"source_type"`

	// Content
	Title           string `json:"title"`
	Content         string `json:"content"`
	ContentMarkdown string `json:"content_markdown"`
	URL             string `json:"url"`

	// Classification
	Category        string `json:"category"`
	Priority        int    `json:"priority"`
	TherapeuticArea string `json:"therapeutic_area"`
	PracticeArea    string `json:"practice_area"`

	// Metadata holds free-form per-item data (word count, detected media,
	// pagination info) stored as JSON.
	Metadata map[string]interface{} `json:"metadata"`

	// ContentHash is a digest of the normalized content, used to detect
	// real changes between scrapes.
	ContentHash string `json:"content_hash"`

	// Timestamps
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WordCount returns the stored word count metadata, or 0 when absent.
func (c *ContentItem) WordCount() int {
	if c.Metadata == nil {
		return 0
	}
	switch v := c.Metadata["word_count"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// ContentStats summarizes the content store for the status surface.
type ContentStats struct {
	TotalItems    int            `json:"total_items"`
	ItemsBySource map[string]int `json:"items_by_source"`
	LastUpdated   time.Time      `json:"last_updated"`
}
