package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnhancer/internal/domain"
)

func TestResetEnhancedKeepsOriginals(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(originals(2)...)
	store.articles = append(store.articles,
		domain.Article{ID: "e1", Title: "Original article 1 (AI Enhanced Edition)"},
		domain.Article{ID: "e2", Title: "Original article 2 (AI Enhanced Edition)", SourceID: "src-2"},
	)

	deleted, err := ResetEnhanced(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Empty(t, store.enhanced())

	remaining, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestResetEnhancedListFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.listErr = errors.New("connection refused")

	_, err := ResetEnhanced(context.Background(), store, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.listErr)
}
