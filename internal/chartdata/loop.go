// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chartdata

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/deepsearch/internal/generate"
	"github.com/pdiddy/deepsearch/internal/search"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// DefaultMaxAttempts is the per-slot attempt ceiling when none is configured.
const DefaultMaxAttempts = 3

// dataKeywords mark a query as already data-focused; enhanceQuery appends
// a data suffix only when none is present.
var dataKeywords = []string{"数据", "统计", "报告", "图表", "分析", "趋势", "规模", "增长率"}

// alternateSuffixes generate the retry query set after an invalid attempt.
var alternateSuffixes = []string{"市场规模数据", "行业报告", "发展趋势统计"}

// SlotLoop runs the validity-driven extraction cycle for chart data. Unlike
// the report section loop, it stops as soon as a round validates, retries
// with an alternate query set while attempts remain, and falls back to the
// canned table on exhaustion.
type SlotLoop struct {
	Gen       generate.Generator
	Search    search.Provider
	AI        types.AIConfig
	SearchCfg types.SearchConfig
	Cfg       types.ChartDataConfig
}

// attemptDelay returns the fixed inter-attempt delay, a courtesy toward
// rate-limited external APIs rather than a correctness requirement.
func (l *SlotLoop) attemptDelay() time.Duration {
	if l.Cfg.AttemptDelay > 0 {
		return l.Cfg.AttemptDelay
	}
	return time.Second
}

func (l *SlotLoop) maxAttempts() int {
	if l.Cfg.MaxAttempts > 0 {
		return l.Cfg.MaxAttempts
	}
	return DefaultMaxAttempts
}

// Run extracts chart data for all three shapes of the topic. Each shape has
// its own independent slot loop; the returned set always carries three
// terminal slots (Valid true, possibly Degraded).
func (l *SlotLoop) Run(ctx context.Context, topic string, w io.Writer) (types.ChartDataSet, error) {
	set := types.ChartDataSet{
		Topic:       topic,
		GeneratedAt: time.Now().UTC(),
	}

	for _, shape := range types.AllChartShapes {
		if err := ctx.Err(); err != nil {
			return set, err
		}
		slot := l.RunSlot(ctx, topic, shape, w)
		set.Slots = append(set.Slots, slot)
	}
	return set, nil
}

// RunSlot runs the extraction loop for one shape. Per attempt: search the
// current query set, ask the generator to extract shape-formatted data,
// validate. Valid output completes the slot; invalid output switches to the
// alternate query set and retries after a fixed delay. When attempts are
// exhausted the canned fallback replaces the best text and the slot is
// forced valid — a degraded success, flagged in progress output so
// consumers know the data is synthetic.
func (l *SlotLoop) RunSlot(ctx context.Context, topic string, shape types.ChartShape, w io.Writer) types.ExtractionSlot {
	slot := types.ExtractionSlot{Shape: shape}
	queries := l.proposeQueries(ctx, topic, w)

	for slot.Attempts < l.maxAttempts() {
		if ctx.Err() != nil {
			break
		}
		slot.Attempts++
		fmt.Fprintf(w, "[%s] attempt %d/%d\n", shape, slot.Attempts, l.maxAttempts())

		results := l.searchAll(ctx, queries, w)
		candidate := l.extract(ctx, shape, results, w)
		slot.BestText = candidate

		if Validate(candidate, shape) {
			slot.Valid = true
			fmt.Fprintf(w, "[%s] extracted valid data\n", shape)
			return slot
		}

		fmt.Fprintf(w, "[%s] extracted data invalid\n", shape)
		if slot.Attempts < l.maxAttempts() {
			queries = AlternateQueries(topic)
			select {
			case <-ctx.Done():
				return l.degrade(topic, slot, w)
			case <-time.After(l.attemptDelay()):
			}
		}
	}

	return l.degrade(topic, slot, w)
}

// degrade replaces the slot's text with the canned fallback and forces it
// valid so downstream consumers always have renderable data.
func (l *SlotLoop) degrade(topic string, slot types.ExtractionSlot, w io.Writer) types.ExtractionSlot {
	slot.BestText = Fallback(topic, slot.Shape)
	slot.Valid = true
	slot.Degraded = true
	fmt.Fprintf(w, "[%s] attempts exhausted, using fallback data\n", slot.Shape)
	return slot
}

// proposeQueries asks the generator for data-focused queries, enhancing
// each with data keywords. A generator failure degrades to the enhanced
// topic itself.
func (l *SlotLoop) proposeQueries(ctx context.Context, topic string, w io.Writer) []string {
	prompt, err := renderQueryPrompt(topic)
	if err != nil {
		return []string{EnhanceQuery(topic)}
	}

	raw, err := l.Gen.Generate(ctx, prompt)
	if err != nil {
		fmt.Fprintf(w, "warning: query proposal failed, searching the topic directly: %v\n", err)
		return []string{EnhanceQuery(topic)}
	}

	queries := parseQueryLines(raw)
	if len(queries) == 0 {
		return []string{EnhanceQuery(topic)}
	}
	for i, q := range queries {
		queries[i] = EnhanceQuery(q)
	}
	return queries
}

// searchAll issues each query and pools the results. Failures are
// non-fatal: extraction proceeds with whatever (possibly nothing) came back.
func (l *SlotLoop) searchAll(ctx context.Context, queries []string, w io.Writer) []types.SearchResult {
	var all []types.SearchResult
	for _, q := range queries {
		results, err := l.Search.Search(ctx, q, l.SearchCfg)
		if err != nil {
			fmt.Fprintf(w, "warning: search %q failed: %v\n", q, err)
			continue
		}
		all = append(all, results...)
	}
	return all
}

// extract runs the shape's extraction prompt over the pooled results.
// Failures return an empty candidate, which the validator rejects.
func (l *SlotLoop) extract(ctx context.Context, shape types.ChartShape, results []types.SearchResult, w io.Writer) string {
	prompt, err := renderExtractPrompt(shape, search.FormatForPrompt(results, l.SearchCfg.MaxContentLength))
	if err != nil {
		return ""
	}

	out, err := generate.WithRetry(ctx, l.Gen, prompt, l.AI.MaxRetries)
	if err != nil {
		fmt.Fprintf(w, "warning: %s extraction failed: %v\n", shape, err)
		return ""
	}
	return strings.TrimSpace(out)
}

// EnhanceQuery appends a data suffix to queries that carry no data keyword.
func EnhanceQuery(query string) string {
	for _, kw := range dataKeywords {
		if strings.Contains(query, kw) {
			return query
		}
	}
	return query + " 数据统计报告"
}

// AlternateQueries builds the retry query set: topic-suffix variants rather
// than a reflective rewrite.
func AlternateQueries(topic string) []string {
	queries := make([]string, 0, len(alternateSuffixes))
	for _, suffix := range alternateSuffixes {
		queries = append(queries, topic+" "+suffix)
	}
	return queries
}

// parseQueryLines extracts plain query lines from generator output,
// dropping list markers and numbering that models emit despite the prompt.
func parseQueryLines(raw string) []string {
	var queries []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "1.") || strings.HasPrefix(line, "2.") ||
			strings.HasPrefix(line, "3.") || strings.HasPrefix(line, "-") ||
			strings.HasPrefix(line, "*") {
			continue
		}
		queries = append(queries, line)
	}
	return queries
}
