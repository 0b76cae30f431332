package adapter

import (
	"context"
	"time"
)

// NewsItem is one recent local news headline used to enrich fragility
// prompts.
type NewsItem struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
}

// NewsProvider is optional; a nil provider simply yields no enrichment.
// Implementations apply the 48-hour recency filter themselves.
type NewsProvider interface {
	Recent(ctx context.Context, query string, maxItems int) ([]NewsItem, error)
}
