// Package fetcher performs rate-limited HTTP GET with retry, plus headless
// browser rendering for sources that require JavaScript execution. It owns
// connection-level concerns only; extraction and persistence live elsewhere.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/rxacademy/harvest/internal/common"
)

// Fetcher performs rate-limited HTTP fetches with retry and backoff. One
// Fetcher is owned by one scraper instance; the rate limiter enforces a
// minimum inter-request delay across everything that instance fetches.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	retry     *RetryPolicy
	userAgent string
	logger    arbor.ILogger

	// renderer is created lazily on the first FetchRendered call and torn
	// down by Close.
	renderer *Renderer
	jsWait   time.Duration
	timeout  time.Duration
}

// New creates a Fetcher from configuration
func New(cfg common.FetcherConfig, logger arbor.ILogger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.RequestTimeout.Std()},
		limiter:   rate.NewLimiter(rate.Every(cfg.RequestDelay.Std()), 1),
		retry:     NewRetryPolicy(cfg.MaxAttempts),
		userAgent: cfg.UserAgent,
		logger:    logger,
		jsWait:    cfg.JavaScriptWaitTime.Std(),
		timeout:   cfg.RequestTimeout.Std(),
	}
}

// FetchHTML fetches a URL and returns the response body as a string.
// Transient failures (network errors, 5xx, 408, 429) are retried with
// non-decreasing backoff; terminal failures (other 4xx) fail immediately.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBytes fetches a URL and returns the raw response body. Used for
// secondary documents such as linked PDFs.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url)
}

// FetchRendered fetches a URL through the headless browser, for sources that
// require JavaScript execution. The browser is created lazily on first use.
func (f *Fetcher) FetchRendered(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	if f.renderer == nil {
		f.renderer = NewRenderer(f.userAgent, f.jsWait, f.timeout, f.logger)
	}
	return f.renderer.Render(ctx, url)
}

// Close releases any browser resources. Safe to call on every exit path,
// including when no rendering was performed.
func (f *Fetcher) Close() {
	if f.renderer != nil {
		f.renderer.Close()
		f.renderer = nil
	}
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		// Every outgoing request, including the first, passes through the
		// same rate-limit check.
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		body, status, err := f.doRequest(ctx, url)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}

		lastErr = err
		lastStatus = status

		if status > 0 && TerminalStatus(status) {
			return nil, &FetchError{
				URL:        url,
				StatusCode: status,
				Terminal:   true,
				Attempts:   attempt + 1,
			}
		}

		if err != nil && !retryableError(err) {
			return nil, &FetchError{URL: url, Terminal: true, Attempts: attempt + 1, Err: err}
		}

		if attempt < f.retry.MaxAttempts-1 {
			backoff := f.retry.Backoff(attempt)
			f.logger.Debug().
				Str("url", url).
				Int("attempt", attempt+1).
				Int("status_code", status).
				Err(err).
				Dur("backoff", backoff).
				Msg("Retrying fetch after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	f.logger.Warn().
		Str("url", url).
		Int("max_attempts", f.retry.MaxAttempts).
		Int("status_code", lastStatus).
		Err(lastErr).
		Msg("All fetch attempts exhausted")

	return nil, &FetchError{
		URL:        url,
		StatusCode: lastStatus,
		Attempts:   f.retry.MaxAttempts,
		Err:        lastErr,
	}
}

func (f *Fetcher) doRequest(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	return body, resp.StatusCode, nil
}
