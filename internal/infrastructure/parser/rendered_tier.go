package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/extract"
	"ArticleEnhancer/internal/ports"
)

const renderedParagraphLimit = 20

// RenderedTier loads the page in a browser so script-built content is present before extraction.
type RenderedTier struct {
	renderer ports.PageRenderer
}

var _ extract.Tier = (*RenderedTier)(nil)

// NewRenderedTier wires the browser renderer.
func NewRenderedTier(renderer ports.PageRenderer) *RenderedTier {
	return &RenderedTier{renderer: renderer}
}

// Name identifies the tier in logs and outcomes.
func (r *RenderedTier) Name() string {
	return "rendered"
}

// Fetch renders the page and returns its main text, or the first paragraphs.
func (r *RenderedTier) Fetch(ctx context.Context, pageURL string) (string, error) {
	if r.renderer == nil {
		return "", fmt.Errorf("renderer is not configured")
	}

	html, err := r.renderer.Render(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse rendered dom: %w", err)
	}

	text := mainText(doc, renderedParagraphLimit)
	if text == "" {
		return "", extract.ErrNoContent
	}
	return text, nil
}
