// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine drives the per-section refinement cycle: query generation,
// web search, and fragment summarization, repeated a fixed number of times.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/deepsearch/internal/generate"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// QueryPlan is the output of a query node: what to search for and why.
type QueryPlan struct {
	Query     string `json:"search_query"`
	Reasoning string `json:"reasoning"`
}

// SectionPlan is one proposed report section from the structure node.
type SectionPlan struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ProposeStructure asks the generator for the report skeleton. This is a
// required step: the call is retried, and a response that still cannot be
// parsed makes the whole run fail.
func ProposeStructure(ctx context.Context, gen generate.Generator, cfg types.AIConfig, topic string) ([]SectionPlan, error) {
	prompt, err := render(structurePromptTmpl, struct{ Topic string }{Topic: topic})
	if err != nil {
		return nil, err
	}

	raw, err := generate.WithRetry(ctx, gen, prompt, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("generating report structure: %w", err)
	}

	plans, err := parseStructure(raw)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// FirstSearch generates the initial query for a section with no prior
// fragment. Required step: retried, and an error abandons the section run.
func FirstSearch(ctx context.Context, gen generate.Generator, cfg types.AIConfig, title, guidance string) (QueryPlan, error) {
	prompt, err := render(firstSearchPromptTmpl, struct{ Title, Guidance string }{title, guidance})
	if err != nil {
		return QueryPlan{}, err
	}

	raw, err := generate.WithRetry(ctx, gen, prompt, cfg.MaxRetries)
	if err != nil {
		return QueryPlan{}, fmt.Errorf("generating first search query: %w", err)
	}

	plan, ok := parseQueryPlan(raw)
	if !ok {
		return QueryPlan{}, fmt.Errorf("parsing first search query from generator output")
	}
	return plan, nil
}

// ReflectQuery generates a corrective query from the section's latest
// fragment. Optional step: a generator failure or unparseable output
// returns ok=false and the caller keeps the previous fragment unchanged
// for that round.
func ReflectQuery(ctx context.Context, gen generate.Generator, title, guidance, fragment string) (QueryPlan, bool) {
	prompt, err := render(reflectionPromptTmpl, struct{ Title, Guidance, Fragment string }{title, guidance, fragment})
	if err != nil {
		return QueryPlan{}, false
	}

	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return QueryPlan{}, false
	}
	return parseQueryPlan(raw)
}

// SummaryInput carries everything a summary prompt needs.
type SummaryInput struct {
	Title    string
	Guidance string
	Query    string
	Results  string // formatted search results, possibly the empty-results marker
	Prior    string // latest fragment; empty for the first pass
}

// Summarize produces the section fragment for one round. The first pass
// (empty Prior) is a required step and is retried; a reflection summary
// failure degrades by returning the prior fragment unchanged. Either way
// the generation prompt tolerates empty search results.
func Summarize(ctx context.Context, gen generate.Generator, cfg types.AIConfig, in SummaryInput) (string, error) {
	tmpl := firstSummaryPromptTmpl
	if in.Prior != "" {
		tmpl = reflectionSummaryPromptTmpl
	}

	prompt, err := render(tmpl, in)
	if err != nil {
		return in.Prior, err
	}

	if in.Prior == "" {
		out, err := generate.WithRetry(ctx, gen, prompt, cfg.MaxRetries)
		if err != nil {
			return "", fmt.Errorf("generating first summary: %w", err)
		}
		return strings.TrimSpace(out), nil
	}

	out, err := gen.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		return in.Prior, nil
	}
	return strings.TrimSpace(out), nil
}

// FormatReport asks the generator to polish the assembled draft. Callers
// fall back to the manual assembly on error.
func FormatReport(ctx context.Context, gen generate.Generator, draft string) (string, error) {
	prompt, err := render(formatReportPromptTmpl, struct{ Draft string }{Draft: draft})
	if err != nil {
		return "", err
	}

	out, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = stripCodeFence(out)
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty formatted report")
	}
	return strings.TrimSpace(out), nil
}

// parseQueryPlan extracts a QueryPlan from generator output. It tolerates
// Markdown code fences and leading prose around the JSON object. When no
// JSON object parses, it falls back to scanning for a "search_query" line.
func parseQueryPlan(raw string) (QueryPlan, bool) {
	cleaned := stripCodeFence(raw)

	if obj := extractJSON(cleaned, '{', '}'); obj != "" {
		var plan QueryPlan
		if err := json.Unmarshal([]byte(obj), &plan); err == nil && strings.TrimSpace(plan.Query) != "" {
			plan.Query = strings.TrimSpace(plan.Query)
			return plan, true
		}
	}

	// Line-scan fallback: some models answer `search_query: ...` as text.
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "search_query") {
			if _, after, found := strings.Cut(line, ":"); found {
				q := strings.Trim(strings.TrimSpace(after), `"',`)
				if q != "" {
					return QueryPlan{Query: q}, true
				}
			}
		}
	}

	return QueryPlan{}, false
}

// parseStructure extracts the ordered section list from generator output.
func parseStructure(raw string) ([]SectionPlan, error) {
	cleaned := stripCodeFence(raw)

	arr := extractJSON(cleaned, '[', ']')
	if arr == "" {
		return nil, fmt.Errorf("no JSON array in structure response")
	}

	var plans []SectionPlan
	if err := json.Unmarshal([]byte(arr), &plans); err != nil {
		return nil, fmt.Errorf("parsing structure response: %w", err)
	}

	var valid []SectionPlan
	for _, p := range plans {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		p.Title = strings.TrimSpace(p.Title)
		p.Content = strings.TrimSpace(p.Content)
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("structure response contains no sections")
	}
	return valid, nil
}

// stripCodeFence removes a surrounding Markdown code fence, if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, " \t{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// extractJSON returns the first balanced opener..closer span in s, or "".
func extractJSON(s string, opener, closer byte) string {
	start := strings.IndexByte(s, opener)
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
