package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

// MaxContextSources bounds how many context pages feed one generation.
const MaxContextSources = 2

// Resolver picks context URLs: the article's own page when it has one, search results otherwise,
// and a fixed default pair when search comes back empty.
type Resolver struct {
	searcher    ports.Searcher
	qualifier   string
	timeout     time.Duration
	defaultURLs []string
	logger      *slog.Logger
}

var _ ports.ContextResolver = (*Resolver)(nil)

// ResolverDeps wires the searcher and its policy.
type ResolverDeps struct {
	Searcher    ports.Searcher
	Qualifier   string
	Timeout     time.Duration
	DefaultURLs []string
	Logger      *slog.Logger
}

// NewResolver constructs a resolver.
func NewResolver(deps ResolverDeps) *Resolver {
	return &Resolver{
		searcher:    deps.Searcher,
		qualifier:   deps.Qualifier,
		timeout:     deps.Timeout,
		defaultURLs: deps.DefaultURLs,
		logger:      deps.Logger,
	}
}

// Resolve returns 1-2 URLs and never fails.
func (r *Resolver) Resolve(ctx context.Context, article domain.Article) []string {
	if IsAbsoluteURL(article.URL) {
		return []string{article.URL}
	}

	query := strings.TrimSpace(strings.TrimSpace(article.Title) + " " + r.qualifier)
	results := r.search(ctx, query)
	if len(results) == 0 {
		r.log("search produced no candidates, using defaults", "query", query)
		return r.defaults()
	}

	if len(results) > MaxContextSources {
		results = results[:MaxContextSources]
	}
	return results
}

func (r *Resolver) search(ctx context.Context, query string) []string {
	if r.searcher == nil {
		return nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		r.log("search failed", "query", query, "error", err)
		return nil
	}
	return results
}

func (r *Resolver) defaults() []string {
	urls := make([]string, 0, MaxContextSources)
	for _, u := range r.defaultURLs {
		if len(urls) == MaxContextSources {
			break
		}
		urls = append(urls, u)
	}
	return urls
}

func (r *Resolver) log(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

// IsAbsoluteURL reports whether raw is a well-formed http(s) URL with a host.
func IsAbsoluteURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
