package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnhancer/internal/domain"
)

var defaultPair = []string{"https://en.wikipedia.org/wiki/Chatbot", "https://en.wikipedia.org/wiki/Customer_service"}

func TestResolveUsesOwnURL(t *testing.T) {
	t.Parallel()

	for _, u := range []string{
		"https://beyondchats.com/blogs/why-chatbots",
		"http://example.com",
		"https://example.com/path?q=1#frag",
	} {
		searcher := &stubSearcher{results: []string{"https://other.example.com"}}
		resolver := NewResolver(ResolverDeps{Searcher: searcher, DefaultURLs: defaultPair})

		got := resolver.Resolve(context.Background(), domain.Article{Title: "T", URL: u})

		assert.Equal(t, []string{u}, got)
		assert.Empty(t, searcher.queries, "search must be skipped for %s", u)
	}
}

func TestResolveSearchesWithoutURL(t *testing.T) {
	t.Parallel()

	searcher := &stubSearcher{results: []string{
		"https://one.example.com", "https://two.example.com", "https://three.example.com",
	}}
	resolver := NewResolver(ResolverDeps{Searcher: searcher, Qualifier: "blog article", DefaultURLs: defaultPair})

	for _, raw := range []string{"", "/blogs/relative", "not a url", "ftp://files.example.com/x"} {
		searcher.queries = nil
		got := resolver.Resolve(context.Background(), domain.Article{Title: "Why chatbots", URL: raw})

		assert.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, got)
		require.Len(t, searcher.queries, 1)
		assert.Equal(t, "Why chatbots blog article", searcher.queries[0])
	}
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cases := map[string]*stubSearcher{
		"no results": {},
		"error":      {err: errors.New("layout changed")},
	}
	for name, searcher := range cases {
		resolver := NewResolver(ResolverDeps{Searcher: searcher, DefaultURLs: defaultPair})
		got := resolver.Resolve(context.Background(), domain.Article{Title: "T"})
		assert.Equal(t, defaultPair, got, name)
	}

	noSearcher := NewResolver(ResolverDeps{DefaultURLs: append(defaultPair, "https://third.example.com")})
	assert.Equal(t, defaultPair, noSearcher.Resolve(context.Background(), domain.Article{Title: "T"}))
}

func TestIsAbsoluteURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAbsoluteURL("https://example.com/a"))
	assert.False(t, IsAbsoluteURL("example.com/a"))
	assert.False(t, IsAbsoluteURL("https://"))
	assert.False(t, IsAbsoluteURL("mailto:someone@example.com"))
}
