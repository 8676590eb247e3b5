package app

import (
	"context"
	"fmt"
	"log/slog"

	"ArticleEnhancer/internal/config"
	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/extract"
	"ArticleEnhancer/internal/infrastructure/browser"
	"ArticleEnhancer/internal/infrastructure/llm"
	"ArticleEnhancer/internal/infrastructure/parser"
	"ArticleEnhancer/internal/infrastructure/runlock"
	"ArticleEnhancer/internal/infrastructure/scheduler"
	"ArticleEnhancer/internal/infrastructure/search"
	"ArticleEnhancer/internal/infrastructure/storage"
	"ArticleEnhancer/internal/infrastructure/telegram"
	"ArticleEnhancer/internal/logging"
	"ArticleEnhancer/internal/ports"
	"ArticleEnhancer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    ports.ArticleStore
	chain    *extract.Chain
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New builds the application from configuration. It opens the article store and,
// when a key is present, the model client; everything else is lazy.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store

	model, err := a.openModel(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	renderer := browser.NewRenderer(browser.Options{
		Bin:       cfg.Browser.Bin,
		Headless:  cfg.Browser.Headless,
		UserAgent: cfg.Extractor.UserAgent,
	}, baseLogger.With("component", "browser"))

	searcher := search.NewBrowserSearcher(renderer, cfg.Search.EngineURL, cfg.Search.MaxCandidates, search.Filter{
		SelfDomains:     cfg.Search.SelfDomains,
		VideoDomains:    cfg.Search.VideoDomains,
		SkipTextMarkers: cfg.Search.SkipTextMarkers,
	}, baseLogger.With("component", "search"))

	a.chain = extract.NewChain([]extract.Step{
		{Tier: parser.NewStaticTier(nil, cfg.Extractor.UserAgent), Timeout: cfg.Extractor.StaticTimeout},
		{Tier: parser.NewRenderedTier(renderer), Timeout: cfg.Extractor.RenderTimeout},
	}, cfg.Extractor.MaxChars, baseLogger.With("component", "extractor"))

	resolver := usecase.NewResolver(usecase.ResolverDeps{
		Searcher:    searcher,
		Qualifier:   cfg.Search.Qualifier,
		Timeout:     cfg.Search.Timeout,
		DefaultURLs: cfg.Search.DefaultURLs,
		Logger:      baseLogger.With("component", "resolver"),
	})

	generator := usecase.NewGenerator(usecase.GeneratorDeps{
		Model:        model,
		ContextChars: cfg.Generator.ContextChars,
		Timeout:      cfg.Generator.Timeout,
		Logger:       baseLogger.With("component", "generator"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Store:     store,
		Resolver:  resolver,
		Extractor: a.chain,
		Generator: generator,
		Notifier:  notifier,
		RateLimit: usecase.RateLimit{
			BatchSize: cfg.Pipeline.BatchSize,
			ItemDelay: cfg.Pipeline.ItemDelay,
		},
		TitleMarker: cfg.Pipeline.TitleMarker,
		OriginBase:  cfg.Pipeline.OriginBase,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	return a, nil
}

func (a *Application) openStore(ctx context.Context) (ports.ArticleStore, error) {
	switch a.cfg.Store.Driver {
	case config.StoreDriverSQLite:
		repo, err := storage.OpenSQLite(ctx, a.cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		a.logger.Debug("using sqlite article store", "dsn", a.cfg.Store.DSN)
		return repo, nil
	default:
		a.logger.Debug("using api article store", "base_url", a.cfg.Store.BaseURL)
		return storage.NewAPIClient(a.cfg.Store.BaseURL, a.cfg.Store.Timeout), nil
	}
}

// openModel returns nil when no credentials are configured; the generator then always
// takes the deterministic fallback.
func (a *Application) openModel(ctx context.Context) (ports.ModelClient, error) {
	switch a.cfg.Generator.Provider {
	case config.ProviderOpenAI:
		if a.cfg.ChatGPT.APIKey == "" {
			a.logger.Warn("OPENAI_API_KEY is not set, fallback generation only")
			return nil, nil
		}
		return llm.NewChatGPTClient(a.cfg.ChatGPT, nil), nil
	case config.ProviderGemini, "":
		if a.cfg.Gemini.APIKey == "" {
			a.logger.Warn("GEMINI_API_KEY is not set, fallback generation only")
			return nil, nil
		}
		client, err := llm.NewGeminiClient(ctx, a.cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", a.cfg.Generator.Provider)
	}
}

// Run performs one bounded batch under the host run lock.
func (a *Application) Run(ctx context.Context) (usecase.Report, error) {
	lock, err := runlock.Acquire(a.cfg.Lock.Path)
	if err != nil {
		return usecase.Report{}, err
	}
	defer func() { _ = lock.Release() }()

	return a.pipeline.Run(ctx)
}

// Watch holds the run lock and runs a batch on every scheduler interval until ctx ends.
func (a *Application) Watch(ctx context.Context) error {
	lock, err := runlock.Acquire(a.cfg.Lock.Path)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	driver := scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watch mode started", "interval", a.cfg.Scheduler.Interval)

	<-ctx.Done()
	if err := sched.Stop(context.Background()); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("watch mode stopped")
	return nil
}

// Candidates lists originals still waiting for enhancement.
func (a *Application) Candidates(ctx context.Context) ([]domain.Article, error) {
	return a.pipeline.Candidates(ctx)
}

// Extract runs the tier chain on a single URL.
func (a *Application) Extract(ctx context.Context, url string) extract.Outcome {
	return a.chain.Run(ctx, url)
}

// ResetEnhanced removes every enhanced article from the store.
func (a *Application) ResetEnhanced(ctx context.Context) (int, error) {
	lock, err := runlock.Acquire(a.cfg.Lock.Path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = lock.Release() }()

	return usecase.ResetEnhanced(ctx, a.store, a.logger.With("component", "reset"))
}

// Close releases the store.
func (a *Application) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
