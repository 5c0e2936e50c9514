// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chartdata extracts chart-ready numeric data for a topic through
// a validity-driven search-extract-validate loop with canned fallbacks.
package chartdata

import (
	"regexp"
	"strings"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// failureIndicators are phrases the generator emits when it cannot find
// data. Their presence is a validity signal, not an error. The list and
// the per-shape thresholds below are load-bearing: the fallback policy
// keys off exactly these gates.
var failureIndicators = []string{
	"未找到可提取的数据",
	"AI未能提取",
	"无法提取",
	"提取失败",
	"没有找到",
	"不包含",
	"无法找到",
	"错误",
	"失败",
}

// temporalMarkers are the tokens that qualify text as time-series data.
var temporalMarkers = []string{"年", "月", "季度", "日", "期", "时间", "序列"}

var (
	numericPattern    = regexp.MustCompile(`\d+(\.\d+)?%?`)
	percentagePattern = regexp.MustCompile(`\d+%|\d+\.?\d*%`)
)

// Validate reports whether text is usable as chart data for the shape.
// It is a pure syntactic gate, not a semantic validator:
//
//   - Categorical: at least 3 non-blank lines, at least half of them
//     containing a numeric token.
//   - TimeSeries: at least 3 non-blank lines, at least one temporal marker
//     and at least one numeric token anywhere in the text.
//   - PartOfWhole: at least 2 non-blank lines, at least half of them
//     containing a percentage token.
//
// Empty text and text carrying a failure-indicator phrase are always invalid.
func Validate(text string, shape types.ChartShape) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	for _, indicator := range failureIndicators {
		if strings.Contains(text, indicator) {
			return false
		}
	}

	lines := nonBlankLines(text)

	switch shape {
	case types.ShapeCategorical:
		if len(lines) < 3 {
			return false
		}
		numeric := 0
		for _, line := range lines {
			if numericPattern.MatchString(line) {
				numeric++
			}
		}
		return float64(numeric) >= float64(len(lines))/2

	case types.ShapeTimeSeries:
		if len(lines) < 3 {
			return false
		}
		hasTime := false
		for _, marker := range temporalMarkers {
			if strings.Contains(text, marker) {
				hasTime = true
				break
			}
		}
		return hasTime && numericPattern.MatchString(text)

	case types.ShapePartOfWhole:
		if len(lines) < 2 {
			return false
		}
		percentages := 0
		for _, line := range lines {
			if percentagePattern.MatchString(line) {
				percentages++
			}
		}
		return float64(percentages) >= float64(len(lines))/2
	}

	return false
}

// nonBlankLines splits text into trimmed, non-empty lines.
func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
