package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/ports"
)

// Filter decides which result anchors count as usable context pages.
type Filter struct {
	SelfDomains     []string
	VideoDomains    []string
	// SkipTextMarkers are engine chrome labels; an anchor is skipped only when its whole
	// text equals one of them, ignoring case and spacing.
	SkipTextMarkers []string
}

// BrowserSearcher loads a search results page through a renderer and harvests outbound links.
type BrowserSearcher struct {
	renderer      ports.PageRenderer
	engineURL     string
	maxCandidates int
	filter        Filter
	logger        *slog.Logger
}

var _ ports.Searcher = (*BrowserSearcher)(nil)

// NewBrowserSearcher wires a renderer with the engine URL; maxCandidates defaults to 5.
func NewBrowserSearcher(renderer ports.PageRenderer, engineURL string, maxCandidates int, filter Filter, logger *slog.Logger) *BrowserSearcher {
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	return &BrowserSearcher{
		renderer:      renderer,
		engineURL:     engineURL,
		maxCandidates: maxCandidates,
		filter:        filter,
		logger:        logger,
	}
}

// Search returns up to maxCandidates result URLs. Zero results is not an error.
func (s *BrowserSearcher) Search(ctx context.Context, query string) ([]string, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("renderer is not configured")
	}

	pageURL, err := buildSearchURL(s.engineURL, query)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.Render(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("load results page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	results := s.collect(doc)
	if s.logger != nil {
		s.logger.Debug("search finished", "query", query, "results", len(results))
	}
	return results, nil
}

func (s *BrowserSearcher) collect(doc *goquery.Document) []string {
	var (
		results []string
		seen    = map[string]struct{}{}
	)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		target, ok := s.filter.accept(href, a.Text())
		if !ok {
			return true
		}
		if _, dup := seen[target]; dup {
			return true
		}
		seen[target] = struct{}{}
		results = append(results, target)
		return len(results) < s.maxCandidates
	})

	return results
}

// accept returns the unwrapped target URL when the anchor is a primary, non-video, external result.
func (f Filter) accept(href, text string) (string, bool) {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))
	if text == "" {
		return "", false
	}
	for _, marker := range f.SkipTextMarkers {
		if text == strings.ToLower(strings.Join(strings.Fields(marker), " ")) {
			return "", false
		}
	}

	target := unwrapRedirect(href)
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Hostname() == "" {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	if matchesDomain(host, f.SelfDomains) || matchesDomain(host, f.VideoDomains) {
		return "", false
	}

	parsed.Fragment = ""
	return parsed.String(), true
}

// unwrapRedirect resolves engine-relative redirect links such as /url?q=<target>.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := parsed.Query()
	for _, key := range []string{"q", "url"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return href
}

func matchesDomain(host string, domains []string) bool {
	host = strings.TrimPrefix(host, "www.")
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "www."))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func buildSearchURL(engine, query string) (string, error) {
	parsed, err := url.Parse(engine)
	if err != nil {
		return "", fmt.Errorf("invalid search engine url %s: %w", engine, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
