package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector lists elements that never carry article text.
const noiseSelector = "script, style, noscript, nav, header, footer, iframe"

// contentSelectors are tried in order; the first non-empty match wins.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".post-content",
	".entry-content",
	".article-content",
	".blog-content",
	".content",
	"#content",
}

// mainText strips noise from doc and returns the text of the best content container.
// When no container matches, paragraphs are joined instead; maxParagraphs <= 0 means all.
func mainText(doc *goquery.Document, maxParagraphs int) string {
	doc.Find(noiseSelector).Remove()

	for _, selector := range contentSelectors {
		var text string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = normalizeBlock(s.Text())
			return text == ""
		})
		if text != "" {
			return text
		}
	}

	return paragraphText(doc, maxParagraphs)
}

func paragraphText(doc *goquery.Document, limit int) string {
	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := normalizeLine(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		return limit <= 0 || len(paragraphs) < limit
	})
	return strings.Join(paragraphs, "\n\n")
}

// normalizeBlock collapses whitespace inside each line and drops blank lines.
func normalizeBlock(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = normalizeLine(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func normalizeLine(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
