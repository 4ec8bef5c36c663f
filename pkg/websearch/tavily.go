package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Result is a single web search hit, scored for trustworthiness.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// TavilyClient searches the web through the Tavily API, restricted to
// Apple-related sources.
type TavilyClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		APIKey:  apiKey,
		BaseURL: "https://api.tavily.com",
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	SearchDepth    string   `json:"search_depth"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// Search queries Tavily and returns results ordered by source authority.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:     c.APIKey,
		Query:      query + " iPhone troubleshooting",
		MaxResults: maxResults,
		IncludeDomains: []string{
			"support.apple.com",
			"apple.com",
			"discussions.apple.com",
		},
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search error: status %d, body: %s", resp.StatusCode, string(respBytes))
	}

	var out tavilyResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score * DomainAuthority(r.URL),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	return results, nil
}

// DomainAuthority weights a result by how much we trust its source.
// Official Apple documentation is authoritative, Apple's own community
// forum is close behind, anything else is treated with caution.
func DomainAuthority(rawURL string) float32 {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0.5
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")

	switch {
	case host == "support.apple.com" || host == "apple.com":
		return 1.0
	case host == "discussions.apple.com":
		return 0.85
	default:
		return 0.5
	}
}
