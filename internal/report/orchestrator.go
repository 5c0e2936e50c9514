// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report orchestrates a research run: structure proposal, section
// refinement, and final artifact assembly.
//
// Error taxonomy: the structure proposal is the one fatal precondition — a
// run aborts only when the proposed structure cannot be parsed after
// retries (ErrStructureParse). Search and generation hiccups inside the
// section loops degrade output quality, never its presence.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/deepsearch/internal/generate"
	"github.com/pdiddy/deepsearch/internal/refine"
	"github.com/pdiddy/deepsearch/internal/search"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// ErrStructureParse marks the one fatal failure mode: the generator's
// report structure proposal could not be parsed.
var ErrStructureParse = errors.New("report structure proposal not parseable")

// Orchestrator drives a ReportState through the section refinement loops
// and assembles the final artifact.
type Orchestrator struct {
	Gen       generate.Generator
	Search    search.Provider
	AI        types.AIConfig
	SearchCfg types.SearchConfig
	Report    types.ReportConfig
}

// Run executes a full research run for the topic. It returns the finished
// state (final artifact set, every section completed) or an error wrapping
// ErrStructureParse when the structure proposal fails. All other external
// failures are absorbed by the section loops.
func (o *Orchestrator) Run(ctx context.Context, topic string, w io.Writer) (*types.ReportState, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic is empty")
	}

	fmt.Fprintf(w, "[1/3] proposing report structure\n")

	state, err := o.propose(ctx, topic)
	if err != nil {
		return nil, err
	}
	for i, sec := range state.Sections {
		fmt.Fprintf(w, "  %d. %s\n", i+1, sec.Title)
	}

	fmt.Fprintf(w, "[2/3] refining %d sections\n", len(state.Sections))

	if err := o.refineSections(ctx, state, w); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "[3/3] assembling final report\n")

	artifact := o.assemble(ctx, state)
	state.MarkCompleted(artifact)

	progress := state.Progress()
	fmt.Fprintf(w, "done: %d/%d sections (%.1f%%)\n",
		progress.CompletedSections, progress.TotalSections, progress.PercentComplete)

	return state, nil
}

// propose creates the ReportState from the generator's structure proposal.
func (o *Orchestrator) propose(ctx context.Context, topic string) (*types.ReportState, error) {
	plans, err := refine.ProposeStructure(ctx, o.Gen, o.AI, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: topic %q: %v", ErrStructureParse, topic, err)
	}

	state := &types.ReportState{
		ID:          uuid.NewString(),
		ReportTitle: topic,
		Query:       topic,
		CreatedAt:   time.Now().UTC(),
	}
	for _, p := range plans {
		state.Sections = append(state.Sections, types.Section{
			Title:    p.Title,
			Guidance: p.Content,
		})
	}
	return state, nil
}

// refineSections runs each section through its loop. Sections are mutually
// independent, so with Concurrency > 1 they refine in parallel under an
// errgroup: each worker owns exactly one Section entry, and Wait is the
// barrier before assembly. The default is strictly sequential.
func (o *Orchestrator) refineSections(ctx context.Context, state *types.ReportState, w io.Writer) error {
	loop := &refine.SectionLoop{
		Gen:            o.Gen,
		Search:         o.Search,
		AI:             o.AI,
		SearchCfg:      o.SearchCfg,
		MaxReflections: o.Report.MaxReflections,
	}

	if o.Report.Concurrency > 1 {
		sw := &lockedWriter{w: w}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.Report.Concurrency)
		for i := range state.Sections {
			sec := &state.Sections[i]
			g.Go(func() error {
				fmt.Fprintf(sw, "section: %s\n", sec.Title)
				return loop.Run(gctx, sec, sw)
			})
		}
		return g.Wait()
	}

	for i := range state.Sections {
		sec := &state.Sections[i]
		fmt.Fprintf(w, "section %d/%d: %s\n", i+1, len(state.Sections), sec.Title)
		if err := loop.Run(ctx, sec, w); err != nil {
			return err
		}
	}
	return nil
}

// lockedWriter serializes writes from concurrent section workers onto one
// progress writer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// assemble builds the final artifact. It first asks the generator to
// format the report, falling back to manual concatenation when that fails;
// either way every section title appears in original order.
func (o *Orchestrator) assemble(ctx context.Context, state *types.ReportState) string {
	manual := assembleManually(state.ReportTitle, state.Sections)

	formatted, err := refine.FormatReport(ctx, o.Gen, manual)
	if err != nil {
		return manual
	}
	// The formatted report must still carry every section; otherwise keep
	// the manual assembly.
	for _, sec := range state.Sections {
		if !strings.Contains(formatted, sec.Title) {
			return manual
		}
	}
	return formatted
}

// assembleManually concatenates section fragments under their titles.
func assembleManually(title string, sections []types.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, sec := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.Title, strings.TrimSpace(sec.LatestFragment))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
