package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/extract"
	"ArticleEnhancer/internal/ports"
)

const (
	excerptMinChars = 40
	excerptMaxChars = 200
)

// RateLimit is the batch policy that keeps search and model traffic polite:
// at most BatchSize items per run, ItemDelay between consecutive items.
type RateLimit struct {
	BatchSize int
	ItemDelay time.Duration
}

// DefaultRateLimit caps a run at five items with a short pause between them.
var DefaultRateLimit = RateLimit{BatchSize: 5, ItemDelay: 3 * time.Second}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Store       ports.ArticleStore
	Resolver    ports.ContextResolver
	Extractor   ports.Extractor
	Generator   ports.Generator
	Notifier    ports.Notifier
	RateLimit   RateLimit
	TitleMarker string
	OriginBase  string
	Logger      *slog.Logger
}

// Pipeline implements the article-enhancement workflow.
type Pipeline struct {
	store       ports.ArticleStore
	resolver    ports.ContextResolver
	extractor   ports.Extractor
	generator   ports.Generator
	notifier    ports.Notifier
	limit       RateLimit
	titleMarker string
	originBase  string
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// ItemOutcome records where one work item ended.
type ItemOutcome struct {
	SourceID   string
	Title      string
	State      domain.ItemState
	EnhancedID string
	References []string
	Fallback   bool
	Err        error
}

// Report summarises one run.
type Report struct {
	RunID      string
	Candidates int
	Selected   int
	Enhanced   int
	Failed     int
	Items      []ItemOutcome
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	limit := deps.RateLimit
	if limit.BatchSize <= 0 {
		limit.BatchSize = DefaultRateLimit.BatchSize
	}
	if limit.ItemDelay < 0 {
		limit.ItemDelay = 0
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		store:       deps.Store,
		resolver:    deps.Resolver,
		extractor:   deps.Extractor,
		generator:   deps.Generator,
		notifier:    deps.Notifier,
		limit:       limit,
		titleMarker: deps.TitleMarker,
		originBase:  deps.OriginBase,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Candidates lists the originals the next run would pick up, without the batch cap.
func (p *Pipeline) Candidates(ctx context.Context) ([]domain.Article, error) {
	if p.store == nil {
		return nil, fmt.Errorf("article store is not configured")
	}
	articles, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return SelectCandidates(articles, p.titleMarker, 0), nil
}

// Run processes one bounded batch. Item failures are counted in the report; only a store
// listing failure or cancellation returns an error.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := p.logger.With("run_id", report.RunID)

	candidates, err := p.Candidates(ctx)
	if err != nil {
		return report, err
	}
	report.Candidates = len(candidates)

	if len(candidates) > p.limit.BatchSize {
		candidates = candidates[:p.limit.BatchSize]
	}
	report.Selected = len(candidates)
	log.Info("run started", "candidates", report.Candidates, "selected", report.Selected)

	for i, source := range candidates {
		if i > 0 {
			if err := p.sleep(ctx, p.limit.ItemDelay); err != nil {
				log.Warn("run interrupted", "processed", i, "error", err)
				return report, err
			}
		}

		outcome := p.process(ctx, log.With("source_id", source.ID), source)
		report.Items = append(report.Items, outcome)
		if outcome.State == domain.StatePersisted {
			report.Enhanced++
		} else {
			report.Failed++
		}
	}

	log.Info("run finished", "enhanced", report.Enhanced, "failed", report.Failed)
	p.notify(ctx, log, report)
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, log *slog.Logger, source domain.Article) ItemOutcome {
	outcome := ItemOutcome{SourceID: source.ID, Title: source.Title, State: domain.StateSelected}
	fail := func(err error) ItemOutcome {
		log.Error("item failed", "state", outcome.State, "error", err)
		outcome.State = domain.StateFailed
		outcome.Err = err
		return outcome
	}

	if p.resolver == nil || p.extractor == nil || p.generator == nil {
		return fail(fmt.Errorf("pipeline is missing a resolver, extractor or generator"))
	}

	urls := p.resolver.Resolve(ctx, source)
	if len(urls) > MaxContextSources {
		urls = urls[:MaxContextSources]
	}
	outcome.State = domain.StateContextResolved
	log.Debug("context resolved", "urls", urls)

	contexts := p.extractAll(ctx, urls)
	outcome.State = domain.StateExtracted
	log.Debug("context extracted", "sources", len(contexts))

	gen := p.generator.Generate(ctx, domain.GenerationRequest{
		Title:    source.Title,
		Original: source.Content,
		Contexts: contexts,
	})
	outcome.State = domain.StateGenerated
	outcome.Fallback = gen.Fallback
	log.Debug("article generated", "fallback", gen.Fallback, "chars", len(gen.Content))

	enhanced := p.build(source, urls, gen)
	created, err := p.store.Create(ctx, enhanced)
	if err != nil {
		return fail(fmt.Errorf("persist enhanced article: %w", err))
	}

	outcome.State = domain.StatePersisted
	outcome.EnhancedID = created.ID
	outcome.References = enhanced.References
	log.Info("article enhanced", "enhanced_id", created.ID, "references", len(urls), "fallback", gen.Fallback)
	return outcome
}

// extractAll fetches all context URLs concurrently and joins before returning.
func (p *Pipeline) extractAll(ctx context.Context, urls []string) []domain.ContextItem {
	items := make([]domain.ContextItem, len(urls))

	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			items[i] = domain.ContextItem{URL: u, Text: p.extractor.Extract(ctx, u)}
			return nil
		})
	}
	_ = g.Wait()

	return items
}

func (p *Pipeline) build(source domain.Article, urls []string, gen domain.Generation) domain.Article {
	analytics := gen.Analytics.Normalize()
	references := make([]string, len(urls))
	copy(references, urls)

	origin := strings.TrimSpace(source.URL)
	if !IsAbsoluteURL(origin) {
		origin = p.originBase + source.ID
	}

	return domain.Article{
		Title:      EnhancedTitle(source.Title, p.titleMarker),
		Content:    gen.Content,
		Excerpt:    Excerpt(gen.Content),
		URL:        origin,
		Original:   false,
		AIEnhanced: true,
		SourceID:   source.ID,
		References: references,
		Analytics:  &analytics,
	}
}

// Excerpt returns the first substantial line of content, stripped of Markdown markers and
// truncated; short documents fall back to their first non-empty line.
func Excerpt(content string) string {
	var first string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#>*-_ "))
		line = strings.ReplaceAll(line, "**", "")
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if len([]rune(line)) >= excerptMinChars {
			return clip(line)
		}
	}
	return clip(first)
}

func clip(line string) string {
	if len([]rune(line)) <= excerptMaxChars {
		return line
	}
	return extract.Truncate(line, excerptMaxChars) + "..."
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, report Report) {
	if p.notifier == nil || len(report.Items) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, BuildDigest(report)); err != nil {
		log.Warn("publish digest", "error", err)
	}
}

// BuildDigest renders a short human-readable run summary.
func BuildDigest(report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enhancement run %s: %d enhanced, %d failed, %d candidates\n",
		report.RunID, report.Enhanced, report.Failed, report.Candidates)
	for _, item := range report.Items {
		status := string(item.State)
		if item.Fallback && item.State == domain.StatePersisted {
			status += " (fallback)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", item.Title, status)
	}
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
