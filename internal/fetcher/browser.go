package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// blockedResourceTypes are non-essential resource types that are failed at
// the network layer during rendering to reduce page load time.
var blockedResourceTypes = map[network.ResourceType]bool{
	network.ResourceTypeImage:      true,
	network.ResourceTypeStylesheet: true,
	network.ResourceTypeFont:       true,
	network.ResourceTypeMedia:      true,
}

// Renderer drives a headless Chrome instance for pages that require
// JavaScript execution. The browser process is created lazily on first
// Render and must be torn down with Close when the scraper run completes,
// regardless of success or failure.
type Renderer struct {
	userAgent string
	waitTime  time.Duration
	timeout   time.Duration
	logger    arbor.ILogger

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	started       bool
}

// NewRenderer creates a renderer. No browser process is launched until the
// first Render call.
func NewRenderer(userAgent string, waitTime, timeout time.Duration, logger arbor.ILogger) *Renderer {
	return &Renderer{
		userAgent: userAgent,
		waitTime:  waitTime,
		timeout:   timeout,
		logger:    logger,
	}
}

// Render navigates to the URL with JavaScript enabled and returns the
// rendered document HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if err := r.start(); err != nil {
		return "", err
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	taskCtx, cancel := context.WithTimeout(r.browserCtx, timeout)
	defer cancel()

	// Honor caller cancellation as well as the render timeout.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-taskCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(taskCtx,
		fetch.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(r.waitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &FetchError{URL: url, Attempts: 1, Err: fmt.Errorf("browser render failed: %w", err)}
	}

	r.logger.Debug().
		Str("url", url).
		Int("html_len", len(html)).
		Msg("Rendered page with headless browser")

	return html, nil
}

// start lazily launches the browser process and installs the resource-type
// interceptor.
func (r *Renderer) start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Verify the browser actually launches before handing it out.
	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	// Block non-essential resource types. Paused requests must be resolved
	// off the event goroutine.
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if pause, ok := ev.(*fetch.EventRequestPaused); ok {
			go func() {
				c := chromedp.FromContext(browserCtx)
				execCtx := cdp.WithExecutor(browserCtx, c.Target)
				if blockedResourceTypes[pause.ResourceType] {
					_ = fetch.FailRequest(pause.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
				} else {
					_ = fetch.ContinueRequest(pause.RequestID).Do(execCtx)
				}
			}()
		}
	})

	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	r.allocCancel = allocCancel
	r.started = true

	r.logger.Debug().Str("user_agent", r.userAgent).Msg("Headless browser started")
	return nil
}

// Close tears down the browser process. Safe to call multiple times and when
// the browser was never started.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}

	r.browserCancel()
	r.allocCancel()
	r.browserCtx = nil
	r.browserCancel = nil
	r.allocCancel = nil
	r.started = false

	r.logger.Debug().Msg("Headless browser closed")
}
