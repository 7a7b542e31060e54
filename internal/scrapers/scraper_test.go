package scrapers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxacademy/harvest/internal/common"
	"github.com/rxacademy/harvest/internal/models"
	badgerstore "github.com/rxacademy/harvest/internal/storage/badger"
)

func testFetcherConfig() common.FetcherConfig {
	return common.FetcherConfig{
		UserAgent:      "harvest-test/1.0",
		RequestDelay:   common.Duration(time.Millisecond),
		RequestTimeout: common.Duration(5 * time.Second),
		MaxAttempts:    1,
		CheckRobots:    false,
	}
}

func testContentStorage(t *testing.T) *badgerstore.ContentStorage {
	t.Helper()

	db, err := badgerstore.NewBadgerDB(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "harvest-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return badgerstore.NewContentStorage(db, common.GetLogger())
}

func guidelinePage() string {
	body := strings.Repeat("Metformin remains the recommended first-line agent for glycemic control. ", 40)
	return `<html><head><title>MOH</title></head><body>
		<h1 class="page-title">Diabetes Guideline</h1>
		<div class="guideline-content"><p>` + body + `</p></div>
	</body></html>`
}

func TestRun_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guidelines/diabetes":
			w.Write([]byte(guidelinePage()))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: []string{srv.URL + "/guidelines/diabetes", srv.URL + "/guidelines/missing"},
	}, testFetcherConfig(), common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	result := scraper.Run(context.Background())

	assert.True(t, result.Success, "one saved item makes the run a success despite errors")
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "/guidelines/missing")
	assert.Equal(t, "moh-guidelines", result.JobName)
	assert.Greater(t, result.Duration, time.Duration(0))

	// The saved item carries full identity, hash, and classification.
	id := common.NewContentID("moh", common.CanonicalSlug(srv.URL+"/guidelines/diabetes"))
	item, err := storage.GetItem(id)
	require.NoError(t, err)
	assert.Equal(t, models.SourceMOH, item.SourceType)
	assert.Equal(t, "Diabetes Guideline", item.Title)
	assert.Len(t, item.ContentHash, 64)
	assert.Equal(t, "endocrine", item.TherapeuticArea)
	assert.Equal(t, "clinical-guideline", item.Category)
}

func TestRun_RescrapeUpdatesInPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(guidelinePage()))
	}))
	defer srv.Close()

	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: []string{srv.URL + "/guidelines/diabetes"},
	}, testFetcherConfig(), common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	first := scraper.Run(context.Background())
	second := scraper.Run(context.Background())

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 1, second.Count)

	items, err := storage.ListItems(nil)
	require.NoError(t, err)
	assert.Len(t, items, 1, "re-scraping the same page must update, not duplicate")
}

func TestRun_AllURLsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: []string{srv.URL + "/a", srv.URL + "/b"},
	}, testFetcherConfig(), common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	result := scraper.Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Count)
	assert.Len(t, result.Errors, 2)
}

func TestRun_ContentBelowGateNotPersisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<article>too short</article>`))
	}))
	defer srv.Close()

	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: []string{srv.URL + "/thin"},
	}, testFetcherConfig(), common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	result := scraper.Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "below minimum length")

	items, err := storage.ListItems(nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRun_RobotsDisallowSkipsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		w.Write([]byte(guidelinePage()))
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.CheckRobots = true

	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: []string{srv.URL + "/guidelines/diabetes"},
	}, cfg, common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	result := scraper.Run(context.Background())

	assert.Equal(t, 0, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "robots.txt")
}

func TestRun_ConcurrentRunRejected(t *testing.T) {
	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: nil,
	}, testFetcherConfig(), common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	// Simulate an in-flight run holding the flag.
	scraper.running.Store(true)

	result := scraper.Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "already running")

	// The rejected call must not have cleared the in-flight run's flag.
	assert.True(t, scraper.running.Load())
}

func TestRun_EmptyURLListSucceeds(t *testing.T) {
	storage := testContentStorage(t)
	scraper, err := NewSourceScraper(common.SourceConfig{
		Name: "moh-guidelines",
		Type: "moh",
		URLs: nil,
	}, testFetcherConfig(), common.ExtractConfig{MinContentLength: 100}, storage, common.GetLogger())
	require.NoError(t, err)

	result := scraper.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Errors)
}

func TestNewSourceScraper_UnknownType(t *testing.T) {
	storage := testContentStorage(t)
	_, err := NewSourceScraper(common.SourceConfig{
		Name: "bad",
		Type: "rss",
	}, testFetcherConfig(), common.ExtractConfig{}, storage, common.GetLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}
