package ports

import (
	"context"
	"time"

	"ArticleEnhancer/internal/domain"
)

// ArticleStore is the article CRUD collaborator (HTTP API or local database).
type ArticleStore interface {
	List(ctx context.Context) ([]domain.Article, error)
	Create(ctx context.Context, article domain.Article) (domain.Article, error)
	Delete(ctx context.Context, id string) error
}

// ContextResolver picks up to two context URLs for an article. It never fails.
type ContextResolver interface {
	Resolve(ctx context.Context, article domain.Article) []string
}

// Searcher runs a web search and returns ranked result URLs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Extractor turns a URL into non-empty plain text. It never fails.
type Extractor interface {
	Extract(ctx context.Context, url string) string
}

// Generator produces an enhanced article body plus analytics. It never fails.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) domain.Generation
}

// ModelClient sends a single prompt to a language model and returns the raw reply.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PageRenderer loads a page in a real browser and returns the rendered DOM as HTML.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
