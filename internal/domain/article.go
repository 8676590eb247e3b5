package domain

import "time"

// Article is a store record. Originals and enhanced editions share the same shape
// and are told apart by the Original flag.
type Article struct {
	ID          string
	Title       string
	Content     string
	Excerpt     string
	URL         string
	Original    bool
	AIEnhanced  bool
	SourceID    string
	References  []string
	Analytics   *Analytics
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// ContextItem is an external page fetched as extra material for one article.
type ContextItem struct {
	URL  string
	Text string
}

// GenerationRequest carries everything the model needs to rewrite one article.
type GenerationRequest struct {
	Title    string
	Original string
	Contexts []ContextItem
}

// Generation is the model output. Fallback reports that the templated path produced it.
type Generation struct {
	Content   string
	Analytics Analytics
	Fallback  bool
}

// ItemState enumerates the milestones of one work item within a run.
type ItemState string

const (
	StateSelected        ItemState = "selected"
	StateContextResolved ItemState = "context_resolved"
	StateExtracted       ItemState = "extracted"
	StateGenerated       ItemState = "generated"
	StatePersisted       ItemState = "persisted"
	StateFailed          ItemState = "failed"
)
