package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

// ErrNotFound is returned by Delete when the article does not exist.
var ErrNotFound = errors.New("article not found")

// APIClient talks to the article CRUD API (GET/POST /articles, DELETE /articles/:id).
type APIClient struct {
	baseURL string
	http    *http.Client
}

var _ ports.ArticleStore = (*APIClient)(nil)

// NewAPIClient creates a client rooted at baseURL, e.g. http://localhost:5000/api.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// List returns every article the API knows about.
func (c *APIClient) List(ctx context.Context) ([]domain.Article, error) {
	var records []apiArticle
	if err := c.do(ctx, http.MethodGet, "/articles", nil, http.StatusOK, &records); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	articles := make([]domain.Article, 0, len(records))
	for _, rec := range records {
		articles = append(articles, rec.toDomain())
	}
	return articles, nil
}

// Create posts a new article and returns it with the server-assigned ID.
func (c *APIClient) Create(ctx context.Context, article domain.Article) (domain.Article, error) {
	var created apiArticle
	if err := c.do(ctx, http.MethodPost, "/articles", fromDomain(article), http.StatusCreated, &created); err != nil {
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	return created.toDomain(), nil
}

// Delete removes an article by ID.
func (c *APIClient) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/articles/"+url.PathEscape(id), nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, payload any, wantStatus int, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodDelete {
		return ErrNotFound
	}
	if resp.StatusCode != wantStatus {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiArticle mirrors the JSON document served by the article API.
type apiArticle struct {
	ID         string        `json:"_id,omitempty"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	Excerpt    string        `json:"excerpt,omitempty"`
	URL        string        `json:"url,omitempty"`
	Original   bool          `json:"original"`
	AIEnhanced bool          `json:"aiEnhanced,omitempty"`
	SourceID   string        `json:"sourceId,omitempty"`
	References []string      `json:"references,omitempty"`
	Analytics  *apiAnalytics `json:"analytics,omitempty"`
	Date       *time.Time    `json:"date,omitempty"`
	UpdatedAt  *time.Time    `json:"updatedAt,omitempty"`
}

type apiAnalytics struct {
	Sentiment        string      `json:"sentiment"`
	Tone             string      `json:"tone"`
	ReadabilityScore int         `json:"readabilityScore"`
	ReadingEase      string      `json:"readingEase"`
	Keywords         []string    `json:"keywords"`
	Entities         apiEntities `json:"entities"`
}

type apiEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

func fromDomain(a domain.Article) apiArticle {
	rec := apiArticle{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Excerpt:    a.Excerpt,
		URL:        a.URL,
		Original:   a.Original,
		AIEnhanced: a.AIEnhanced,
		SourceID:   a.SourceID,
		References: a.References,
	}
	if a.Analytics != nil {
		an := a.Analytics.Normalize()
		rec.Analytics = &apiAnalytics{
			Sentiment:        string(an.Sentiment),
			Tone:             an.Tone,
			ReadabilityScore: an.ReadabilityScore,
			ReadingEase:      an.ReadingEase,
			Keywords:         an.Keywords,
			Entities: apiEntities{
				People:        an.Entities.People,
				Organizations: an.Entities.Organizations,
				Locations:     an.Entities.Locations,
			},
		}
	}
	if !a.PublishedAt.IsZero() {
		rec.Date = &a.PublishedAt
	}
	return rec
}

func (r apiArticle) toDomain() domain.Article {
	article := domain.Article{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		Excerpt:    r.Excerpt,
		URL:        r.URL,
		Original:   r.Original,
		AIEnhanced: r.AIEnhanced,
		SourceID:   r.SourceID,
		References: r.References,
	}
	if r.Analytics != nil {
		sentiment, _ := domain.ParseSentiment(r.Analytics.Sentiment)
		an := domain.Analytics{
			Sentiment:        sentiment,
			Tone:             r.Analytics.Tone,
			ReadabilityScore: r.Analytics.ReadabilityScore,
			ReadingEase:      r.Analytics.ReadingEase,
			Keywords:         r.Analytics.Keywords,
			Entities: domain.Entities{
				People:        r.Analytics.Entities.People,
				Organizations: r.Analytics.Entities.Organizations,
				Locations:     r.Analytics.Entities.Locations,
			},
		}.Normalize()
		article.Analytics = &an
	}
	if r.Date != nil {
		article.PublishedAt = *r.Date
	}
	if r.UpdatedAt != nil {
		article.UpdatedAt = *r.UpdatedAt
	}
	return article
}
