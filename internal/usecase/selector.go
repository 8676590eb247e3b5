package usecase

import (
	"html"
	"strings"

	"ArticleEnhancer/internal/domain"
)

// SelectCandidates returns originals that have no enhanced counterpart yet, in input order,
// capped to limit (limit <= 0 means no cap).
//
// An original counts as enhanced when some non-original points at it through SourceID, or
// when stripping marker from a non-original title yields the original's title. Titles are
// compared entity-decoded because the article API HTML-escapes them on create and does not
// keep SourceID.
func SelectCandidates(articles []domain.Article, marker string, limit int) []domain.Article {
	enhancedIDs := map[string]struct{}{}
	enhancedTitles := map[string]struct{}{}

	for _, a := range articles {
		if a.Original {
			continue
		}
		if a.SourceID != "" {
			enhancedIDs[a.SourceID] = struct{}{}
		}
		if title := baseTitle(a.Title, marker); title != "" {
			enhancedTitles[title] = struct{}{}
		}
	}

	var (
		candidates []domain.Article
		seen       = map[string]struct{}{}
	)
	for _, a := range articles {
		if !a.Original {
			continue
		}
		if _, ok := enhancedIDs[a.ID]; ok && a.ID != "" {
			continue
		}
		if _, ok := enhancedTitles[comparableTitle(a.Title)]; ok {
			continue
		}
		if a.ID != "" {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
		}

		candidates = append(candidates, a)
		if limit > 0 && len(candidates) == limit {
			break
		}
	}

	return candidates
}

// EnhancedTitle appends the marker to an original title.
func EnhancedTitle(title, marker string) string {
	return strings.TrimSpace(title) + marker
}

func baseTitle(title, marker string) string {
	title = comparableTitle(title)
	if m := comparableTitle(marker); m != "" {
		title = strings.TrimSpace(strings.TrimSuffix(title, m))
	}
	return title
}

// comparableTitle decodes HTML entities and collapses whitespace.
func comparableTitle(title string) string {
	return strings.Join(strings.Fields(html.UnescapeString(title)), " ")
}
