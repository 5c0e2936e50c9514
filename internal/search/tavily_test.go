// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// withTavilyServer points the client at a test server for the duration of fn.
func withTavilyServer(t *testing.T, handler http.HandlerFunc, fn func(tv *Tavily)) {
	t.Helper()
	server := httptest.NewServer(handler)
	defer server.Close()

	orig := tavilyAPIURL
	tavilyAPIURL = server.URL
	defer func() { tavilyAPIURL = orig }()

	fn(&Tavily{Client: server.Client()})
}

func TestTavilySearch(t *testing.T) {
	var gotReq tavilyRequest

	handler := func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		score := 0.97
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Scored", "url": "https://a.example.com", "content": "with score", "score": score},
				{"title": "Unscored", "url": "https://b.example.com", "content": "without score"},
			},
		})
	}

	cfg := types.SearchConfig{APIKey: "tvly-key", MaxResults: 7, Depth: "advanced"}

	withTavilyServer(t, handler, func(tv *Tavily) {
		results, err := tv.Search(context.Background(), "the query", cfg)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
		if !results[0].HasScore || results[0].Score != 0.97 {
			t.Errorf("results[0] score = (%v, %v), want (0.97, true)", results[0].Score, results[0].HasScore)
		}
		if results[1].HasScore {
			t.Error("results[1].HasScore = true, want false for absent score")
		}
		if results[1].Title != "Unscored" {
			t.Errorf("results[1].Title = %q, want Unscored", results[1].Title)
		}
	})

	if gotReq.APIKey != "tvly-key" {
		t.Errorf("request api_key = %q, want tvly-key", gotReq.APIKey)
	}
	if gotReq.Query != "the query" {
		t.Errorf("request query = %q, want the query", gotReq.Query)
	}
	if gotReq.MaxResults != 7 {
		t.Errorf("request max_results = %d, want 7", gotReq.MaxResults)
	}
	if gotReq.SearchDepth != "advanced" {
		t.Errorf("request search_depth = %q, want advanced", gotReq.SearchDepth)
	}
}

func TestTavilySearchDefaults(t *testing.T) {
	var gotReq tavilyRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}

	withTavilyServer(t, handler, func(tv *Tavily) {
		if _, err := tv.Search(context.Background(), "q", types.SearchConfig{APIKey: "k"}); err != nil {
			t.Fatalf("Search: %v", err)
		}
	})

	if gotReq.MaxResults != 5 {
		t.Errorf("default max_results = %d, want 5", gotReq.MaxResults)
	}
	if gotReq.SearchDepth != "basic" {
		t.Errorf("default search_depth = %q, want basic", gotReq.SearchDepth)
	}
}

func TestTavilySearchMissingAPIKey(t *testing.T) {
	tv := &Tavily{}
	_, err := tv.Search(context.Background(), "q", types.SearchConfig{})
	if err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("error = %q, want it to mention the API key", err)
	}
}

func TestTavilySearchAPIError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "invalid key"}`, http.StatusForbidden)
	}

	withTavilyServer(t, handler, func(tv *Tavily) {
		_, err := tv.Search(context.Background(), "q", types.SearchConfig{APIKey: "bad"})
		if err == nil {
			t.Fatal("expected error for 403, got nil")
		}
		if !strings.Contains(err.Error(), "403") {
			t.Errorf("error = %q, want it to mention 403", err)
		}
	})
}
