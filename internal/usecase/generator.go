package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/extract"
	"ArticleEnhancer/internal/ports"
)

const (
	defaultContextChars = 2000

	// FallbackPreamble frames every templated article built without the model.
	FallbackPreamble = "This enhanced edition revisits the original article with a clearer structure " +
		"and practical takeaways for readers."

	fallbackClosing = "## Key Takeaways\n\n" +
		"- Revisit the core ideas above and apply them to your own context.\n" +
		"- Compare these points with current industry practice before acting on them.\n" +
		"- Share the insights with your team to keep everyone aligned."
)

var errNoModel = errors.New("model client is not configured")

// DefaultAnalytics is the record attached to every fallback article.
func DefaultAnalytics() domain.Analytics {
	return domain.Analytics{
		Sentiment:        domain.SentimentNeutral,
		Tone:             "Professional",
		ReadabilityScore: 60,
		ReadingEase:      "Standard",
		Keywords:         []string{"insights", "best practices", "industry trends"},
		Entities: domain.Entities{
			People:        []string{},
			Organizations: []string{},
			Locations:     []string{},
		},
	}
}

// Generator rewrites an article through a model and falls back to a template on any failure.
type Generator struct {
	model        ports.ModelClient
	contextChars int
	timeout      time.Duration
	logger       *slog.Logger
}

var _ ports.Generator = (*Generator)(nil)

// GeneratorDeps wires the model client and prompt limits.
type GeneratorDeps struct {
	Model        ports.ModelClient
	ContextChars int
	Timeout      time.Duration
	Logger       *slog.Logger
}

// NewGenerator constructs a generator; contextChars defaults to 2000.
func NewGenerator(deps GeneratorDeps) *Generator {
	if deps.ContextChars <= 0 {
		deps.ContextChars = defaultContextChars
	}
	return &Generator{
		model:        deps.Model,
		contextChars: deps.ContextChars,
		timeout:      deps.Timeout,
		logger:       deps.Logger,
	}
}

// Generate never fails: a primary-path error yields the templated fallback.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) domain.Generation {
	gen, err := g.primary(ctx, req)
	if err == nil {
		return gen
	}

	if g.logger != nil {
		g.logger.Warn("generation failed, using fallback", "title", req.Title, "error", err)
	}
	return Fallback(req)
}

func (g *Generator) primary(ctx context.Context, req domain.GenerationRequest) (domain.Generation, error) {
	if g.model == nil {
		return domain.Generation{}, errNoModel
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	reply, err := g.model.Complete(ctx, BuildPrompt(req, g.contextChars))
	if err != nil {
		return domain.Generation{}, fmt.Errorf("complete: %w", err)
	}
	return ParseGeneration(reply)
}

// BuildPrompt asks for a rewrite of the original using the contexts plus analytics, as strict JSON.
func BuildPrompt(req domain.GenerationRequest, contextChars int) string {
	var b strings.Builder

	b.WriteString("You are an expert editor. Rewrite and enhance the ORIGINAL ARTICLE below. ")
	b.WriteString("Use the REFERENCE material for extra facts, structure and depth, but do not copy it verbatim. ")
	b.WriteString("Write in Markdown with a short introduction, clear section headings and a conclusion.\n\n")

	fmt.Fprintf(&b, "ORIGINAL ARTICLE\nTitle: %s\n\n%s\n\n", strings.TrimSpace(req.Title), strings.TrimSpace(req.Original))

	for i, item := range req.Contexts {
		fmt.Fprintf(&b, "REFERENCE %d (%s)\n%s\n\n", i+1, item.URL, extract.Truncate(item.Text, contextChars))
	}

	b.WriteString("Also analyse the enhanced article. Respond with a single JSON object and nothing else, ")
	b.WriteString("using exactly this shape:\n")
	b.WriteString(`{"content": "<enhanced article in Markdown>", "analytics": {"sentiment": "Positive|Neutral|Negative", ` +
		`"tone": "<one or two words>", "readabilityScore": <integer 0-100>, "readingEase": "<e.g. Easy, Standard, Difficult>", ` +
		`"keywords": ["<5 to 8 keywords>"], "entities": {"people": [], "organizations": [], "locations": []}}}`)
	b.WriteString("\n")

	return b.String()
}

type modelReply struct {
	Content   string `json:"content"`
	Analytics *struct {
		Sentiment        string   `json:"sentiment"`
		Tone             string   `json:"tone"`
		ReadabilityScore *float64 `json:"readabilityScore"`
		ReadingEase      string   `json:"readingEase"`
		Keywords         []string `json:"keywords"`
		Entities         struct {
			People        []string `json:"people"`
			Organizations []string `json:"organizations"`
			Locations     []string `json:"locations"`
		} `json:"entities"`
	} `json:"analytics"`
}

// ParseGeneration decodes a model reply. Replies with a blank body, no analytics, or
// unusable scalar analytics fields are rejected.
func ParseGeneration(reply string) (domain.Generation, error) {
	var decoded modelReply
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &decoded); err != nil {
		return domain.Generation{}, fmt.Errorf("decode model reply: %w", err)
	}

	content := strings.TrimSpace(decoded.Content)
	if content == "" {
		return domain.Generation{}, fmt.Errorf("model reply has no content")
	}
	if decoded.Analytics == nil {
		return domain.Generation{}, fmt.Errorf("model reply has no analytics")
	}

	raw := decoded.Analytics
	sentiment, ok := domain.ParseSentiment(raw.Sentiment)
	if !ok {
		return domain.Generation{}, fmt.Errorf("model reply has unknown sentiment %q", raw.Sentiment)
	}

	if raw.ReadabilityScore == nil {
		return domain.Generation{}, fmt.Errorf("model reply has no readability score")
	}

	analytics := domain.Analytics{
		Sentiment:        sentiment,
		Tone:             strings.TrimSpace(raw.Tone),
		ReadabilityScore: int(math.Round(*raw.ReadabilityScore)),
		ReadingEase:      strings.TrimSpace(raw.ReadingEase),
		Keywords:         raw.Keywords,
		Entities: domain.Entities{
			People:        raw.Entities.People,
			Organizations: raw.Entities.Organizations,
			Locations:     raw.Entities.Locations,
		},
	}.Normalize()

	if !analytics.Complete() {
		return domain.Generation{}, fmt.Errorf("model reply has incomplete analytics")
	}

	return domain.Generation{Content: content, Analytics: analytics}, nil
}

// Fallback builds the deterministic templated article.
func Fallback(req domain.GenerationRequest) domain.Generation {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(req.Title))
	b.WriteString(FallbackPreamble)
	b.WriteString("\n\n## The Original Article\n\n")
	b.WriteString(strings.TrimSpace(req.Original))
	b.WriteString("\n\n")
	b.WriteString(fallbackClosing)

	return domain.Generation{
		Content:   b.String(),
		Analytics: DefaultAnalytics(),
		Fallback:  true,
	}
}

func stripCodeFence(reply string) string {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, "```") {
		return reply
	}
	reply = strings.TrimPrefix(reply, "```")
	if nl := strings.IndexByte(reply, '\n'); nl >= 0 {
		reply = reply[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(reply), "```"))
}
