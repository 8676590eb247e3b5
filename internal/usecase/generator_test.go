package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnhancer/internal/domain"
)

func request() domain.GenerationRequest {
	return domain.GenerationRequest{
		Title:    "Why live chat matters",
		Original: "Live chat shortens support queues.",
		Contexts: []domain.ContextItem{
			{URL: "https://a.example.com", Text: strings.Repeat("a", 2500)},
			{URL: "https://b.example.com", Text: "short context"},
		},
	}
}

func assertComplete(t *testing.T, a domain.Analytics) {
	t.Helper()
	assert.True(t, a.Complete(), "scalar analytics fields must be set: %+v", a)
	assert.NotNil(t, a.Keywords)
	assert.NotNil(t, a.Entities.People)
	assert.NotNil(t, a.Entities.Organizations)
	assert.NotNil(t, a.Entities.Locations)
	assert.GreaterOrEqual(t, a.ReadabilityScore, 0)
	assert.LessOrEqual(t, a.ReadabilityScore, 100)
}

func TestGeneratePrimaryPath(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(GeneratorDeps{Model: stubModel{reply: validReply}}).Generate(context.Background(), request())

	assert.False(t, gen.Fallback)
	assert.Contains(t, gen.Content, "Live chat lets support teams")
	assert.Equal(t, domain.SentimentPositive, gen.Analytics.Sentiment)
	assert.Equal(t, 71, gen.Analytics.ReadabilityScore)
	assert.Equal(t, []string{"BeyondChats"}, gen.Analytics.Entities.Organizations)
	assertComplete(t, gen.Analytics)
}

func TestGenerateFallbackOnAnyPrimaryFailure(t *testing.T) {
	t.Parallel()

	cases := map[string]GeneratorDeps{
		"no model":            {},
		"quota exhausted":     {Model: stubModel{err: errors.New("429 quota exceeded")}},
		"not json":            {Model: stubModel{reply: "Sure! Here is your article."}},
		"empty content":       {Model: stubModel{reply: `{"content":"  ","analytics":{"sentiment":"Positive","tone":"x","readabilityScore":50,"readingEase":"y"}}`}},
		"missing analytics":   {Model: stubModel{reply: `{"content":"body"}`}},
		"bad sentiment":       {Model: stubModel{reply: `{"content":"body","analytics":{"sentiment":"Ecstatic","tone":"x","readabilityScore":50,"readingEase":"y"}}`}},
		"blank tone":          {Model: stubModel{reply: `{"content":"body","analytics":{"sentiment":"Neutral","tone":"","readabilityScore":50,"readingEase":"y"}}`}},
		"missing readability": {Model: stubModel{reply: `{"content":"body","analytics":{"sentiment":"Neutral","tone":"x","readingEase":"y"}}`}},
		"slow model":          {Model: blockingModel{}, Timeout: 10 * time.Millisecond},
	}

	for name, deps := range cases {
		deps := deps
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(deps).Generate(context.Background(), request())

			assert.True(t, gen.Fallback)
			assert.Contains(t, gen.Content, FallbackPreamble)
			assert.Contains(t, gen.Content, "Live chat shortens support queues.")
			if diff := cmp.Diff(DefaultAnalytics(), gen.Analytics); diff != "" {
				t.Fatalf("fallback analytics mismatch (-want +got):\n%s", diff)
			}
			assertComplete(t, gen.Analytics)
		})
	}
}

type blockingModel struct{}

func (blockingModel) Complete(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestParseGenerationNormalizes(t *testing.T) {
	t.Parallel()

	reply := "```json\n" + `{"content":"Body","analytics":{"sentiment":"negative","tone":"Critical",` +
		`"readabilityScore":-12,"readingEase":"Difficult"}}` + "\n```"

	gen, err := ParseGeneration(reply)
	require.NoError(t, err)

	assert.Equal(t, domain.SentimentNegative, gen.Analytics.Sentiment)
	assert.Equal(t, 0, gen.Analytics.ReadabilityScore)
	assert.Equal(t, []string{}, gen.Analytics.Keywords)
	assert.Equal(t, []string{}, gen.Analytics.Entities.Locations)
}

func TestBuildPromptTruncatesContexts(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(request(), 2000)

	assert.Contains(t, prompt, "Why live chat matters")
	assert.Contains(t, prompt, "REFERENCE 2 (https://b.example.com)")
	assert.Contains(t, prompt, strings.Repeat("a", 2000))
	assert.NotContains(t, prompt, strings.Repeat("a", 2001))
	assert.Contains(t, prompt, `"readabilityScore"`)
}
