package domain

import "strings"

// Sentiment is the overall polarity of an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// ParseSentiment maps a case-insensitive label onto the enum.
func ParseSentiment(value string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "positive":
		return SentimentPositive, true
	case "neutral":
		return SentimentNeutral, true
	case "negative":
		return SentimentNegative, true
	default:
		return "", false
	}
}

// Analytics is attached to every enhanced article. All fields are mandatory.
type Analytics struct {
	Sentiment        Sentiment
	Tone             string
	ReadabilityScore int
	ReadingEase      string
	Keywords         []string
	Entities         Entities
}

// Entities partitions named entities found in the article.
type Entities struct {
	People        []string
	Organizations []string
	Locations     []string
}

// Normalize replaces nil lists with empty ones and clamps the readability score to 0-100.
func (a Analytics) Normalize() Analytics {
	a.Keywords = nonNil(a.Keywords)
	a.Entities.People = nonNil(a.Entities.People)
	a.Entities.Organizations = nonNil(a.Entities.Organizations)
	a.Entities.Locations = nonNil(a.Entities.Locations)

	switch {
	case a.ReadabilityScore < 0:
		a.ReadabilityScore = 0
	case a.ReadabilityScore > 100:
		a.ReadabilityScore = 100
	}
	return a
}

// Complete reports whether the scalar fields carry usable values.
func (a Analytics) Complete() bool {
	if _, ok := ParseSentiment(string(a.Sentiment)); !ok {
		return false
	}
	return strings.TrimSpace(a.Tone) != "" && strings.TrimSpace(a.ReadingEase) != ""
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
