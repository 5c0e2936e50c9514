// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/deepsearch/internal/httputil"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Package-level var for test substitution.
var tavilyAPIURL = "https://api.tavily.com/search"

// Tavily queries the Tavily web search API.
type Tavily struct {
	Client *http.Client
}

// Name identifies the backend in progress output.
func (t *Tavily) Name() string { return "tavily" }

// tavilyRequest is the request body for the Tavily search API.
type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

// tavilyResponse is the subset of the Tavily response the pipeline uses.
type tavilyResponse struct {
	Results []struct {
		Title   string   `json:"title"`
		URL     string   `json:"url"`
		Content string   `json:"content"`
		Score   *float64 `json:"score"`
	} `json:"results"`
}

// Search posts a query to Tavily and converts the response. The per-call
// timeout comes from cfg; HTTP 429 responses are retried with backoff by
// httputil.DoWithRetry.
func (t *Tavily) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchResult, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("tavily: API key is missing")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	depth := cfg.Depth
	if depth == "" {
		depth = "basic"
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        cfg.APIKey,
		Query:         query,
		SearchDepth:   depth,
		IncludeAnswer: true,
		MaxResults:    maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling Tavily API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Tavily API returned %d: %s", resp.StatusCode, string(b))
	}

	var tResp tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tResp); err != nil {
		return nil, fmt.Errorf("decoding Tavily response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(tResp.Results))
	for _, r := range tResp.Results {
		sr := types.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		}
		if r.Score != nil {
			sr.Score = *r.Score
			sr.HasScore = true
		}
		results = append(results, sr)
	}
	return results, nil
}
