// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// reportTmpl renders a finished report, with optional chart data blocks
// appended after the sections.
var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, "PingFang SC", sans-serif; max-width: 860px; margin: 2em auto; padding: 0 1em; color: #222; line-height: 1.7; }
h1 { border-bottom: 2px solid #2c6e91; padding-bottom: 0.3em; }
h2 { color: #2c6e91; margin-top: 1.8em; }
.meta { color: #888; font-size: 0.85em; }
.chart { background: #f7f9fb; border: 1px solid #dde5ec; border-radius: 6px; padding: 1em 1.2em; margin: 1em 0; }
.chart h3 { margin-top: 0; color: #2c6e91; }
.chart pre { white-space: pre-wrap; font-family: inherit; margin: 0; }
.degraded { color: #a66; font-size: 0.85em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">生成时间: {{.GeneratedAt}}</p>
{{range .Sections}}<h2>{{.Title}}</h2>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{end}}{{if .Charts}}<h2>数据图表</h2>
{{range .Charts}}<div class="chart">
<h3>{{.Label}}</h3>
<pre>{{.Data}}</pre>
{{if .Degraded}}<p class="degraded">备用数据</p>{{end}}
</div>
{{end}}{{end}}</body>
</html>
`))

type htmlSection struct {
	Title      string
	Paragraphs []string
}

type htmlChart struct {
	Label    string
	Data     string
	Degraded bool
}

type htmlReport struct {
	Title       string
	GeneratedAt string
	Sections    []htmlSection
	Charts      []htmlChart
}

// chartLabels name each shape in the HTML report.
var chartLabels = map[types.ChartShape]string{
	types.ShapeCategorical: "柱状图数据",
	types.ShapeTimeSeries:  "折线图数据",
	types.ShapePartOfWhole: "饼图数据",
}

// WriteHTML renders the finished report (and optional chart data) to an
// HTML file in outputDir and returns the path. Chart data is passed in
// explicitly by the caller; pass nil to omit the chart block.
func WriteHTML(state *types.ReportState, charts *types.ChartDataSet, outputDir string) (string, error) {
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

	data := htmlReport{
		Title:       state.ReportTitle,
		GeneratedAt: at.Format("2006-01-02 15:04:05"),
		Sections:    splitSections(state.FinalArtifact),
	}
	if charts != nil {
		for _, shape := range types.AllChartShapes {
			slot := charts.Slot(shape)
			if slot == nil || !slot.Valid {
				continue
			}
			data.Charts = append(data.Charts, htmlChart{
				Label:    chartLabels[shape],
				Data:     slot.BestText,
				Degraded: slot.Degraded,
			})
		}
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}

	name := fmt.Sprintf("deep_search_report_%s_%s.html", Slug(state.Query), at.Format("20060102_150405"))
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing HTML report: %w", err)
	}
	return path, nil
}

// splitSections parses the Markdown artifact into titled sections for the
// HTML template. The top-level title line is skipped; each ## heading
// starts a new section.
func splitSections(artifact string) []htmlSection {
	var sections []htmlSection
	var current *htmlSection

	for _, line := range strings.Split(artifact, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## "):
			sections = append(sections, htmlSection{Title: strings.TrimPrefix(trimmed, "## ")})
			current = &sections[len(sections)-1]
		case strings.HasPrefix(trimmed, "# "):
			// Report title; rendered separately.
		case trimmed == "":
			// Paragraph break.
		default:
			if current != nil {
				current.Paragraphs = append(current.Paragraphs, trimmed)
			}
		}
	}
	return sections
}
