package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/extract"
)

func TestMainTextPrefersArticleContainer(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	  <header>Site header</header>
	  <nav>Home | Blog</nav>
	  <script>var tracking = true;</script>
	  <div class="content">Sidebar content</div>
	  <article>
	    <h1>Live chat   strategies</h1>
	    <p>First paragraph.</p>
	  </article>
	  <footer>Copyright</footer>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := mainText(doc, 0)
	want := "Live chat strategies\nFirst paragraph."
	if got != want {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestMainTextSkipsEmptyContainers(t *testing.T) {
	t.Parallel()

	html := `<body><article>   </article><main><script>x()</script></main><div class="entry-content">
	  Real body text
	</div></body>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if got := mainText(doc, 0); got != "Real body text" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestMainTextParagraphFallbackRespectsLimit(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<body><div>")
	for i := 0; i < 30; i++ {
		b.WriteString("<p>para</p>")
	}
	b.WriteString("</div></body>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := mainText(doc, renderedParagraphLimit)
	if n := len(strings.Split(got, "\n\n")); n != renderedParagraphLimit {
		t.Fatalf("expected %d paragraphs, got %d", renderedParagraphLimit, n)
	}
}

func TestStaticTierFetch(t *testing.T) {
	t.Parallel()

	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body><div class="post-content">Chatbots reduce response time.</div></body></html>`))
	}))
	defer server.Close()

	tier := NewStaticTier(server.Client(), "Mozilla/5.0 test")
	text, err := tier.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if text != "Chatbots reduce response time." {
		t.Fatalf("unexpected text: %q", text)
	}
	if gotAgent != "Mozilla/5.0 test" {
		t.Fatalf("unexpected user agent: %q", gotAgent)
	}
}

func TestStaticTierFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/empty":
			_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
		}
	}))
	defer server.Close()

	tier := NewStaticTier(server.Client(), "")

	if _, err := tier.Fetch(context.Background(), server.URL+"/missing"); err == nil {
		t.Fatalf("expected error for 404")
	}
	if _, err := tier.Fetch(context.Background(), server.URL+"/empty"); !errors.Is(err, extract.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

type stubRenderer struct {
	html string
	err  error
}

func (s stubRenderer) Render(ctx context.Context, url string) (string, error) {
	return s.html, s.err
}

func TestRenderedTierFetch(t *testing.T) {
	t.Parallel()

	tier := NewRenderedTier(stubRenderer{html: `<body><main><p>Rendered by script</p></main></body>`})
	text, err := tier.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if text != "Rendered by script" {
		t.Fatalf("unexpected text: %q", text)
	}

	failing := NewRenderedTier(stubRenderer{err: errors.New("browser crashed")})
	if _, err := failing.Fetch(context.Background(), "https://example.com"); err == nil {
		t.Fatalf("expected render error")
	}
}

func TestExtractorUnderFailureModes(t *testing.T) {
	t.Parallel()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	refusedURL := closed.URL
	closed.Close()

	chain := extract.NewChain([]extract.Step{
		{Tier: NewStaticTier(nil, "")},
		{Tier: NewRenderedTier(stubRenderer{html: "<html><body></body></html>"})},
	}, 3000, nil)

	got := chain.Extract(context.Background(), refusedURL)
	if got == "" || len([]rune(got)) > 3000 {
		t.Fatalf("unexpected extractor output: %q", got)
	}
	if got != extract.Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
}
