package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/extract"
)

const maxBodyBytes = 5 << 20

// StaticTier fetches a page with a plain HTTP GET and reads it without running scripts.
type StaticTier struct {
	client    *http.Client
	userAgent string
}

var _ extract.Tier = (*StaticTier)(nil)

// NewStaticTier wires an HTTP client; timeouts come from the caller's context.
func NewStaticTier(client *http.Client, userAgent string) *StaticTier {
	if client == nil {
		client = &http.Client{}
	}
	return &StaticTier{client: client, userAgent: userAgent}
}

// Name identifies the tier in logs and outcomes.
func (s *StaticTier) Name() string {
	return "static"
}

// Fetch downloads the page and returns its main text.
func (s *StaticTier) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	text := mainText(doc, 0)
	if text == "" {
		return "", extract.ErrNoContent
	}
	return text, nil
}
