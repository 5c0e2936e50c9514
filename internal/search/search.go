// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries web search APIs and formats results for prompts.
package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// Provider executes a web search. Each backend (Tavily today) implements
// this interface per the Strategy pattern, so the refinement loops never
// depend on a concrete API client.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchResult, error)
}

// Limited wraps a Provider with a shared rate limiter so consecutive calls
// are spaced by cfg.InterCallDelay. The limiter is safe to share across
// concurrent section workers; each call waits its turn before hitting the
// underlying provider.
type Limited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewLimited constructs a rate-limited wrapper around p. A non-positive
// delay disables limiting.
func NewLimited(p Provider, cfg types.SearchConfig) *Limited {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.InterCallDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.InterCallDelay), 1)
	}
	return &Limited{inner: p, limiter: limiter}
}

// Name returns the wrapped provider's name.
func (l *Limited) Name() string { return l.inner.Name() }

// Search waits for the limiter, then delegates to the wrapped provider.
func (l *Limited) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchResult, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Search(ctx, query, cfg)
}

// FormatForPrompt renders search results as numbered blocks suitable for
// inclusion in a generation prompt. Each result's content is truncated to
// maxContentLen runes. An empty result set renders an explicit marker so
// summary prompts can still run with no evidence.
func FormatForPrompt(results []types.SearchResult, maxContentLen int) string {
	if len(results) == 0 {
		return "(no search results)"
	}
	if maxContentLen <= 0 {
		maxContentLen = 1000
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "Result %d: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "Content: %s\n", truncateRunes(r.Content, maxContentLen))
		fmt.Fprintf(&b, "Source: %s\n\n", r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncateRunes shortens s to max runes, appending an ellipsis when cut.
// Rune-based so multi-byte text is never split mid-character.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
