// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/deepsearch/internal/generate"
	"github.com/pdiddy/deepsearch/internal/search"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// SectionLoop runs the bounded refinement cycle for one report section:
// a first pass (query, search, summary) followed by exactly MaxReflections
// reflection rounds. Reflection is count-driven, never validity-driven —
// a section improves by accreting search rounds, and the loop stops when
// the budget is spent, not when some quality gate passes.
type SectionLoop struct {
	Gen       generate.Generator
	Search    search.Provider
	AI        types.AIConfig
	SearchCfg types.SearchConfig

	// MaxReflections is the fixed reflection round count. Non-positive
	// values use the default (2).
	MaxReflections int
}

// DefaultMaxReflections is the reflection round count when none is configured.
const DefaultMaxReflections = 2

// Run refines sec in place until its history holds exactly
// 1 + MaxReflections rounds, then marks it completed.
//
// Search failures are non-fatal: the round proceeds with empty results,
// since summaries tolerate missing evidence. Generator failures on the
// required first pass abandon the section with an error; failures during
// reflection degrade silently — the round is still recorded (with an empty
// query when no query could be generated) and the fragment is kept
// unchanged. A cancelled context aborts promptly without marking the
// section completed.
func (l *SectionLoop) Run(ctx context.Context, sec *types.Section, w io.Writer) error {
	reflections := l.MaxReflections
	if reflections <= 0 {
		reflections = DefaultMaxReflections
	}

	// First pass: no prior fragment exists yet.
	plan, err := FirstSearch(ctx, l.Gen, l.AI, sec.Title, sec.Guidance)
	if err != nil {
		return fmt.Errorf("section %q: %w", sec.Title, err)
	}
	fmt.Fprintf(w, "  query: %s\n", plan.Query)

	results := l.runSearch(ctx, plan.Query, w)
	sec.AddRound(plan.Query, results)

	fragment, err := Summarize(ctx, l.Gen, l.AI, SummaryInput{
		Title:    sec.Title,
		Guidance: sec.Guidance,
		Query:    plan.Query,
		Results:  search.FormatForPrompt(results, l.SearchCfg.MaxContentLength),
	})
	if err != nil {
		return fmt.Errorf("section %q: %w", sec.Title, err)
	}
	sec.LatestFragment = fragment

	// Reflection rounds. Each consumes the latest fragment and supersedes it.
	for k := 0; k < reflections; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(w, "  reflection %d/%d\n", k+1, reflections)

		plan, ok := ReflectQuery(ctx, l.Gen, sec.Title, sec.Guidance, sec.LatestFragment)
		if !ok {
			// No usable corrective query this round. Record the round so
			// the audit trail stays one entry per round, keep the fragment.
			fmt.Fprintf(w, "  warning: no reflection query, keeping fragment\n")
			sec.AddRound("", nil)
			continue
		}
		fmt.Fprintf(w, "  query: %s\n", plan.Query)

		results := l.runSearch(ctx, plan.Query, w)
		sec.AddRound(plan.Query, results)

		fragment, err := Summarize(ctx, l.Gen, l.AI, SummaryInput{
			Title:    sec.Title,
			Guidance: sec.Guidance,
			Query:    plan.Query,
			Results:  search.FormatForPrompt(results, l.SearchCfg.MaxContentLength),
			Prior:    sec.LatestFragment,
		})
		if err == nil {
			sec.LatestFragment = fragment
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	sec.Completed = true
	return nil
}

// runSearch issues one query and downgrades any failure to empty results.
func (l *SectionLoop) runSearch(ctx context.Context, query string, w io.Writer) []types.SearchResult {
	results, err := l.Search.Search(ctx, query, l.SearchCfg)
	if err != nil {
		fmt.Fprintf(w, "  warning: search failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "  found %d results\n", len(results))
	return results
}
