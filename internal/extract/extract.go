package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ArticleEnhancer/internal/ports"
)

const (
	// PlaceholderTier names the fixed final default.
	PlaceholderTier = "placeholder"

	// Placeholder stands in for a page none of the tiers could read.
	Placeholder = "The content of this reference page could not be retrieved. " +
		"The enhancement relies on the original article and general knowledge of the topic."

	defaultMaxChars = 3000
)

// ErrNoContent marks a tier that fetched the page but found no readable text.
var ErrNoContent = errors.New("no readable content")

// Tier is a single extraction strategy (static fetch, rendered fetch, etc.).
type Tier interface {
	Name() string
	Fetch(ctx context.Context, url string) (string, error)
}

// Step pairs a tier with the timeout it runs under. A zero timeout inherits the caller's context.
type Step struct {
	Tier    Tier
	Timeout time.Duration
}

// Outcome is the tagged result of a chain run: the text and the tier that produced it.
type Outcome struct {
	Text string
	Tier string
}

// Chain tries steps in order and unwraps the first success, or the placeholder.
type Chain struct {
	steps    []Step
	maxChars int
	logger   *slog.Logger
}

var _ ports.Extractor = (*Chain)(nil)

// NewChain wires the tiers; maxChars defaults to 3000.
func NewChain(steps []Step, maxChars int, logger *slog.Logger) *Chain {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Chain{steps: steps, maxChars: maxChars, logger: logger}
}

// Extract satisfies ports.Extractor.
func (c *Chain) Extract(ctx context.Context, url string) string {
	return c.Run(ctx, url).Text
}

// Run executes the tiers and reports which one won.
func (c *Chain) Run(ctx context.Context, url string) Outcome {
	for _, step := range c.steps {
		text, err := c.attempt(ctx, step, url)
		if err != nil {
			c.debug("tier failed", "tier", step.Tier.Name(), "url", url, "error", err)
			continue
		}
		c.debug("tier succeeded", "tier", step.Tier.Name(), "url", url, "chars", len(text))
		return Outcome{Text: Truncate(text, c.maxChars), Tier: step.Tier.Name()}
	}

	c.debug("all tiers failed, using placeholder", "url", url)
	return Outcome{Text: Truncate(Placeholder, c.maxChars), Tier: PlaceholderTier}
}

func (c *Chain) attempt(ctx context.Context, step Step, url string) (text string, err error) {
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tier %s panicked: %v", step.Tier.Name(), r)
		}
	}()

	text, err = step.Tier.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func (c *Chain) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// Truncate cuts s to at most max characters without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
