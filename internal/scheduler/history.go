package scheduler

import (
	"sync"

	"github.com/rxacademy/harvest/internal/models"
)

// resultHistory is a fixed-capacity ring buffer of run results. Once capacity
// is reached the oldest entries are evicted to admit new ones. History is
// process-local telemetry; it is reset on restart.
type resultHistory struct {
	mu       sync.Mutex
	results  []*models.ScrapeResult
	capacity int
	start    int // index of the oldest entry
	count    int
}

func newResultHistory(capacity int) *resultHistory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &resultHistory{
		results:  make([]*models.ScrapeResult, capacity),
		capacity: capacity,
	}
}

// Add appends a result, evicting the oldest entry when full.
func (h *resultHistory) Add(result *models.ScrapeResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	end := (h.start + h.count) % h.capacity
	h.results[end] = result
	if h.count < h.capacity {
		h.count++
	} else {
		h.start = (h.start + 1) % h.capacity
	}
}

// Recent returns up to limit results, newest first. limit <= 0 returns all
// retained results.
func (h *resultHistory) Recent(limit int) []*models.ScrapeResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]*models.ScrapeResult, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (h.start + h.count - 1 - i + h.capacity) % h.capacity
		out = append(out, h.results[idx])
	}
	return out
}

// Len returns the number of retained results.
func (h *resultHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
