// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deepsearch pipeline.
// See docs in internal/report for the state lifecycle.
package types

import "time"

// SearchResult is one item returned by a web search provider.
// Results are immutable once received; the provider makes no guarantee
// about sort order, and Score may be absent (HasScore false).
type SearchResult struct {
	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the source address of the result.
	URL string `json:"url" yaml:"url"`

	// Content is the provider's content snippet for the page.
	Content string `json:"content" yaml:"content"`

	// Score is the provider's relevance score. Valid only when HasScore is true.
	Score float64 `json:"score" yaml:"score"`

	// HasScore reports whether the provider supplied a relevance score.
	HasScore bool `json:"has_score" yaml:"has_score"`
}

// SearchRound records one query issued for a section and the results it
// produced. Rounds are append-only: a section's history is never reordered
// or pruned, and the most recent round informs the next reflection.
type SearchRound struct {
	Query     string         `json:"query" yaml:"query"`
	Results   []SearchResult `json:"results" yaml:"results"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
}

// Section is one titled unit of a report undergoing independent refinement.
// Sections are created when the report structure is proposed, mutated only
// by the section refinement loop, and never deleted; the terminal state is
// Completed=true.
type Section struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Guidance describes what the section should cover. It is produced by
	// the structure proposal and feeds every query and summary prompt.
	Guidance string `json:"guidance" yaml:"guidance"`

	// History is the section's append-ordered audit trail of search rounds.
	History []SearchRound `json:"history" yaml:"history"`

	// LatestFragment is the current best text for the section. Each
	// refinement round that produces a new summary replaces it.
	LatestFragment string `json:"latest_fragment" yaml:"latest_fragment"`

	// Completed marks the section as finished refining.
	Completed bool `json:"completed" yaml:"completed"`
}

// AddRound appends a search round to the section's history.
func (s *Section) AddRound(query string, results []SearchResult) {
	s.History = append(s.History, SearchRound{
		Query:     query,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
}

// ReportState is the full state of one research run: the ordered sections,
// report-level metadata, and the assembled final artifact.
//
// Invariant: FinalArtifact is set iff every section has Completed=true;
// setting it transitions CompletedAt from nil to non-nil exactly once.
type ReportState struct {
	// ID uniquely identifies the research run.
	ID string `json:"id" yaml:"id"`

	// ReportTitle is the title proposed for the report.
	ReportTitle string `json:"report_title" yaml:"report_title"`

	// Query is the research topic the run was started with.
	Query string `json:"query" yaml:"query"`

	// Sections holds the report sections in their original proposal order.
	Sections []Section `json:"sections" yaml:"sections"`

	// FinalArtifact is the assembled report text. Empty until the run finishes.
	FinalArtifact string `json:"final_artifact" yaml:"final_artifact"`

	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// MarkCompleted stores the final artifact and stamps the completion time.
func (r *ReportState) MarkCompleted(artifact string) {
	r.FinalArtifact = artifact
	now := time.Now().UTC()
	r.CompletedAt = &now
}

// Progress is a point-in-time snapshot of how far a run has advanced.
type Progress struct {
	TotalSections     int     `json:"total_sections" yaml:"total_sections"`
	CompletedSections int     `json:"completed_sections" yaml:"completed_sections"`
	PercentComplete   float64 `json:"percent_complete" yaml:"percent_complete"`
	Done              bool    `json:"done" yaml:"done"`
}

// Progress computes the current completion snapshot. Safe to call at any
// point during a run; it reads but never mutates the state.
func (r *ReportState) Progress() Progress {
	total := len(r.Sections)
	completed := 0
	for _, s := range r.Sections {
		if s.Completed {
			completed++
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}
	return Progress{
		TotalSections:     total,
		CompletedSections: completed,
		PercentComplete:   pct,
		Done:              r.CompletedAt != nil,
	}
}
