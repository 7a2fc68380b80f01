package pipeline

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/codeforkjeff/museum-provenance/internal/model"
	"github.com/codeforkjeff/museum-provenance/internal/util"
)

// harvestSleepFunc is swapped out in tests to avoid real backoff waits
var harvestSleepFunc = time.Sleep

// Harvester fetches collection pages and locates the provenance
// section inside them
type Harvester struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	retries    int
	robots     *util.RobotsChecker
}

// NewHarvester creates a Harvester from the HTTP configuration
func NewHarvester(cfg model.HTTPConfig) *Harvester {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 3
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(util.NormalizeUserAgent(cfg.UserAgent), cfg.Timeout)
	}

	return &Harvester{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		retries:   cfg.Retries,
		robots:    robots,
	}
}

// HarvestResult contains the fetched page and the provenance text
// located inside it
type HarvestResult struct {
	HTML           string
	ProvenanceText string
	SectionFound   bool
	Subject        string
	Meta           model.HarvestMeta
	FinalURL       string
}

// Harvest fetches a collection page and extracts its provenance
// section. SectionFound is false when no recognizable section exists;
// the caller decides whether that is fatal.
func (h *Harvester) Harvest(ctx context.Context, rawURL string) (*HarvestResult, error) {
	result, err := h.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	result.ProvenanceText, result.SectionFound = ExtractProvenanceSection(result.HTML)
	return result, nil
}

// FetchWithRetry fetches a URL, retrying transient failures with
// backoff. Robots rules are checked once, before the first attempt.
func (h *Harvester) FetchWithRetry(ctx context.Context, rawURL string) (*HarvestResult, error) {
	if h.robots != nil {
		allowed, delay, err := h.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows fetching %s", rawURL)
		}
		if delay > 0 {
			if delay > 10*time.Second {
				delay = 10 * time.Second
			}
			harvestSleepFunc(delay)
		}
	}

	attempts := h.retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			harvestSleepFunc(time.Duration(attempt) * time.Second)
		}

		result, err := h.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// Fetch retrieves a single URL without retries
func (h *Harvester) Fetch(ctx context.Context, rawURL string) (*HarvestResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	meta := model.HarvestMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}

	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, h.maxBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	page := string(body)

	subject := subjectFromHTML(page)
	if subject == "" {
		subject = subjectFromURL(finalURL)
	}

	return &HarvestResult{
		HTML:     page,
		Subject:  subject,
		Meta:     meta,
		FinalURL: finalURL,
	}, nil
}

// isRetryableFetchError reports whether a fetch failure is worth
// another attempt. Transport-level failures and 429/5xx responses
// retry; client errors and body read failures do not.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if idx := strings.Index(msg, "unexpected status: "); idx >= 0 {
		rest := msg[idx+len("unexpected status: "):]
		if strings.HasPrefix(rest, "429") {
			return true
		}
		if strings.HasPrefix(rest, "5") {
			return true
		}
		return false
	}

	return strings.HasPrefix(msg, "fetch: ")
}

// ExtractProvenanceSection locates the provenance section of a
// collection page. It looks for a heading whose text mentions
// provenance and gathers the content that follows it, falling back to
// a container element whose id or class names the section.
func ExtractProvenanceSection(htmlContent string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", false
	}

	if heading := findProvenanceHeading(doc); heading != nil {
		if text := collectSectionText(heading); text != "" {
			return text, true
		}
	}

	if container := findProvenanceContainer(doc); container != nil {
		if text := collapseSpace(nodeText(container)); text != "" {
			return text, true
		}
	}

	return "", false
}

var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

func findProvenanceHeading(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		if _, ok := headingLevels[n.Data]; ok {
			if strings.Contains(strings.ToLower(nodeText(n)), "provenance") {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findProvenanceHeading(c); found != nil {
			return found
		}
	}
	return nil
}

// collectSectionText gathers the text between a heading and the next
// heading of the same or higher level. Pages that wrap the heading in
// its own element contribute the wrapper's siblings instead.
func collectSectionText(heading *html.Node) string {
	level := headingLevels[heading.Data]

	text := siblingText(heading, level)
	if text == "" && heading.Parent != nil {
		text = siblingText(heading.Parent, level)
	}
	return text
}

func siblingText(start *html.Node, level int) string {
	var parts []string
	for sib := start.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode {
			if l, ok := headingLevels[sib.Data]; ok && l <= level {
				break
			}
		}
		if t := collapseSpace(nodeText(sib)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func findProvenanceContainer(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "id" && attr.Key != "class" {
				continue
			}
			if strings.Contains(strings.ToLower(attr.Val), "provenance") {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findProvenanceContainer(c); found != nil {
			return found
		}
	}
	return nil
}

// nodeText collects the visible text beneath a node
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
		sb.WriteString(" ")
	}
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// subjectFromHTML takes the page title as the record subject,
// trimming site-name suffixes
func subjectFromHTML(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	title := findTitle(doc)
	if title == "" {
		return ""
	}
	for _, sep := range []string{" | ", " :: "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}
	return collapseSpace(title)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return nodeText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// subjectFromURL derives a readable subject from the last URL path
// segment when the page offers no title
func subjectFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}
