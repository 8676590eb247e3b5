package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ArticleEnhancer/internal/ports"
)

// ResetEnhanced deletes every non-original article so the next run starts from scratch.
// Originals are never touched. Individual delete failures are joined and returned after
// the remaining records have been tried.
func ResetEnhanced(ctx context.Context, store ports.ArticleStore, logger *slog.Logger) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("article store is not configured")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	articles, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list articles: %w", err)
	}

	var (
		deleted int
		errs    []error
	)
	for _, a := range articles {
		if a.Original {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := store.Delete(ctx, a.ID); err != nil {
			logger.Warn("delete enhanced article failed", "id", a.ID, "error", err)
			errs = append(errs, fmt.Errorf("delete %s: %w", a.ID, err))
			continue
		}
		deleted++
	}

	logger.Info("enhanced articles cleared", "deleted", deleted, "failed", len(errs))
	return deleted, errors.Join(errs...)
}
