package fetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"github.com/ternarybob/arbor"
)

// RobotsChecker consults a target host's robots.txt before fetching.
//
// Policy choice, not a correctness requirement: when directives are
// inaccessible or ambiguous the checker fails open and allows the fetch,
// so an unreachable robots.txt never blocks ingestion.
type RobotsChecker struct {
	client    *http.Client
	userAgent string
	enabled   bool
	logger    arbor.ILogger

	mu    sync.Mutex
	cache map[string]*robotstxt.Group // keyed by scheme://host
}

// NewRobotsChecker creates a robots.txt checker. When enabled is false,
// Allowed always returns true.
func NewRobotsChecker(userAgent string, enabled bool, logger arbor.ILogger) *RobotsChecker {
	return &RobotsChecker{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		enabled:   enabled,
		logger:    logger,
		cache:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the given URL may be fetched under the target's
// robots directives. Fail-open on any error.
func (c *RobotsChecker) Allowed(rawURL string) bool {
	if !c.enabled {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	group := c.groupFor(u)
	if group == nil {
		return true
	}

	allowed := group.Test(u.Path)
	if !allowed {
		c.logger.Info().
			Str("url", rawURL).
			Msg("URL disallowed by robots.txt, skipping")
	}
	return allowed
}

func (c *RobotsChecker) groupFor(u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	if group, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return group
	}
	c.mu.Unlock()

	group := c.fetchGroup(key)

	c.mu.Lock()
	c.cache[key] = group
	c.mu.Unlock()

	return group
}

// fetchGroup retrieves and parses robots.txt for a host. A nil return means
// "no restrictions known" (fail-open).
func (c *RobotsChecker) fetchGroup(base string) *robotstxt.Group {
	robotsURL := fmt.Sprintf("%s/robots.txt", base)

	req, err := http.NewRequest(http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", robotsURL).Msg("robots.txt unreachable, proceeding")
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", robotsURL).Msg("robots.txt unparseable, proceeding")
		return nil
	}

	return data.FindGroup(c.userAgent)
}
