// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// --- FormatForPrompt ---

func TestFormatForPrompt(t *testing.T) {
	results := []types.SearchResult{
		{Title: "First Page", URL: "https://a.example.com", Content: "alpha content"},
		{Title: "Second Page", URL: "https://b.example.com", Content: "beta content"},
	}

	out := FormatForPrompt(results, 500)

	if !strings.Contains(out, "Result 1: First Page") {
		t.Error("missing first result header")
	}
	if !strings.Contains(out, "Result 2: Second Page") {
		t.Error("missing second result header")
	}
	if !strings.Contains(out, "Content: alpha content") {
		t.Error("missing first content line")
	}
	if !strings.Contains(out, "Source: https://b.example.com") {
		t.Error("missing second source line")
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output should not end with a newline")
	}
}

func TestFormatForPromptEmpty(t *testing.T) {
	if got := FormatForPrompt(nil, 500); got != "(no search results)" {
		t.Errorf("FormatForPrompt(nil) = %q, want the empty marker", got)
	}
}

func TestFormatForPromptTruncates(t *testing.T) {
	long := strings.Repeat("长", 50)
	results := []types.SearchResult{{Title: "T", URL: "u", Content: long}}

	out := FormatForPrompt(results, 10)
	if !strings.Contains(out, strings.Repeat("长", 10)+"...") {
		t.Error("content not truncated at the rune limit")
	}
	if strings.Contains(out, strings.Repeat("长", 11)) {
		t.Error("content exceeds the rune limit")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "abc", 10, "abc"},
		{"exact unchanged", "abcde", 5, "abcde"},
		{"cut with ellipsis", "abcdef", 5, "abcde..."},
		{"multibyte safe", "数据统计报告", 3, "数据统..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

// --- Limited ---

// countingProvider counts calls and records their spacing.
type countingProvider struct {
	times []time.Time
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Search(_ context.Context, _ string, _ types.SearchConfig) ([]types.SearchResult, error) {
	p.times = append(p.times, time.Now())
	return nil, nil
}

func TestLimitedSpacesCalls(t *testing.T) {
	inner := &countingProvider{}
	delay := 30 * time.Millisecond
	limited := NewLimited(inner, types.SearchConfig{InterCallDelay: delay})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := limited.Search(ctx, "q", types.SearchConfig{}); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}

	if len(inner.times) != 3 {
		t.Fatalf("got %d calls, want 3", len(inner.times))
	}
	for i := 1; i < len(inner.times); i++ {
		gap := inner.times[i].Sub(inner.times[i-1])
		// Allow a little scheduling slack below the nominal delay.
		if gap < delay-10*time.Millisecond {
			t.Errorf("gap %d = %v, want at least ~%v", i, gap, delay)
		}
	}
}

func TestLimitedZeroDelayPassesThrough(t *testing.T) {
	inner := &countingProvider{}
	limited := NewLimited(inner, types.SearchConfig{})

	start := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := limited.Search(context.Background(), "q", types.SearchConfig{}); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("5 unlimited calls took %v, expected no throttling", elapsed)
	}
}

func TestLimitedName(t *testing.T) {
	limited := NewLimited(&countingProvider{}, types.SearchConfig{})
	if limited.Name() != "counting" {
		t.Errorf("Name = %q, want the wrapped provider's name", limited.Name())
	}
}

func TestLimitedCancelledContext(t *testing.T) {
	inner := &countingProvider{}
	limited := NewLimited(inner, types.SearchConfig{InterCallDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	// First call consumes the burst token.
	if _, err := limited.Search(ctx, "q", types.SearchConfig{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	cancel()
	if _, err := limited.Search(ctx, "q", types.SearchConfig{}); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if len(inner.times) != 1 {
		t.Errorf("inner called %d times, want 1", len(inner.times))
	}
}
