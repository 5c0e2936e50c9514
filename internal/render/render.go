// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes finished run state to report files. Renderers
// consume read-only state handed to them explicitly — nothing here infers
// its input by scanning directories — and have no feedback into the
// refinement loops.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// Slug derives a filesystem-safe fragment from a query: alphanumerics,
// spaces, hyphens, and underscores are kept, spaces become underscores,
// and the result is capped at 30 runes.
func Slug(query string) string {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.TrimRight(b.String(), " ")
	s = strings.ReplaceAll(s, " ", "_")
	runes := []rune(s)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	return string(runes)
}

// ReportFilename builds the Markdown report filename for a run.
func ReportFilename(query string, at time.Time) string {
	return fmt.Sprintf("deep_search_report_%s_%s.md", Slug(query), at.Format("20060102_150405"))
}

// WriteMarkdown saves the final artifact to outputDir and returns the path.
func WriteMarkdown(state *types.ReportState, outputDir string) (string, error) {
	if state.FinalArtifact == "" {
		return "", fmt.Errorf("report %s has no final artifact", state.ID)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	at := state.CreatedAt
	if state.CompletedAt != nil {
		at = *state.CompletedAt
	}
	path := filepath.Join(outputDir, ReportFilename(state.Query, at))
	if err := os.WriteFile(path, []byte(state.FinalArtifact), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// WriteDataReport saves the plain-text chart data report and returns the path.
func WriteDataReport(content, filename, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outputDir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing data report: %w", err)
	}
	return path, nil
}
