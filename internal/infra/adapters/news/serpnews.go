package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"agro-advisory/internal/domain/ports/adapter"
)

var _ adapter.NewsProvider = (*SerpNewsProvider)(nil)

// SerpNewsProvider pulls recent agricultural headlines via the SerpAPI
// google_news engine. Results older than the recency window are dropped so
// prompts never cite stale market conditions.
type SerpNewsProvider struct {
	apiKey  string
	baseURL string
	window  time.Duration
	client  *http.Client
}

func NewSerpNewsProvider(apiKey string) *SerpNewsProvider {
	return &SerpNewsProvider{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		window:  48 * time.Hour,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type serpResponse struct {
	NewsResults []struct {
		Title  string `json:"title"`
		Link   string `json:"link"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Date string `json:"date"`
	} `json:"news_results"`
}

func (p *SerpNewsProvider) Recent(ctx context.Context, query string, maxItems int) ([]adapter.NewsItem, error) {
	q := url.Values{}
	q.Set("engine", "google_news")
	q.Set("q", query)
	q.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi http %d", resp.StatusCode)
	}

	var out serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-p.window)
	items := make([]adapter.NewsItem, 0, maxItems)
	for _, r := range out.NewsResults {
		if len(items) >= maxItems {
			break
		}
		published := parseSerpDate(r.Date)
		// Undated results are kept; the engine already sorts by recency.
		if !published.IsZero() && published.Before(cutoff) {
			continue
		}
		items = append(items, adapter.NewsItem{
			Title:       r.Title,
			URL:         r.Link,
			Source:      r.Source.Name,
			PublishedAt: published,
		})
	}
	return items, nil
}

func parseSerpDate(s string) time.Time {
	for _, layout := range []string{
		"01/02/2006, 03:04 PM, -0700 MST",
		time.RFC3339,
		"2006-01-02 15:04:05 -0700",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
