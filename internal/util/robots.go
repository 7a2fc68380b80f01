package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker enforces robots.txt rules for the collection sites a
// harvest touches. Rules are cached per host for the life of the
// checker.
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string

	mu    sync.Mutex
	rules map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker identifying itself as userAgent
func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		rules:      make(map[string]*robotstxt.RobotsData),
	}
}

// CanFetch reports whether rawURL may be fetched, along with any
// crawl delay the site requests. Unreachable robots.txt fails open:
// harvesting proceeds, the caller may log a warning.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	rules, err := r.rulesFor(ctx, parsed.Scheme, parsed.Host)
	if err != nil {
		return true, 0, nil
	}

	// Test the full request target so query-string rules match too.
	allowed := rules.TestAgent(parsed.RequestURI(), r.userAgent)

	var delay time.Duration
	if group := rules.FindGroup(r.userAgent); group != nil {
		delay = group.CrawlDelay
	}

	return allowed, delay, nil
}

// GetCrawlDelay returns the crawl delay a site requests for a URL
func (r *RobotsChecker) GetCrawlDelay(ctx context.Context, rawURL string) (time.Duration, error) {
	_, delay, err := r.CanFetch(ctx, rawURL)
	return delay, err
}

// Clear drops all cached robots.txt data
func (r *RobotsChecker) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[string]*robotstxt.RobotsData)
}

// rulesFor returns the cached rules for host, fetching them on first
// use. Concurrent harvests may race the first fetch for a host; the
// duplicate download is harmless and the last result wins.
func (r *RobotsChecker) rulesFor(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	rules, ok := r.rules[host]
	r.mu.Unlock()
	if ok {
		return rules, nil
	}

	rules, err := r.fetch(ctx, scheme+"://"+host+"/robots.txt")
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.rules[host] = rules
	r.mu.Unlock()

	return rules, nil
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("robots request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse follows the usual status conventions, including
	// a missing robots.txt allowing everything.
	rules, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	return rules, nil
}

// NormalizeUserAgent reduces a full User-Agent header to the product
// token robots.txt groups match against
func NormalizeUserAgent(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(fields[0], "/")
	return product
}
