// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chartdata

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// queryPromptTmpl asks the generator for data-focused search queries.
var queryPromptTmpl = template.Must(template.New("chart_queries").Parse(`A user needs data about "{{.Topic}}" suitable for building tables and charts (bar, pie, and line charts).

Generate 2-3 precise search queries that:
1. Focus on structured statistics, yearly figures, and comparative data
2. Look for content with numbers, percentages, amounts, and growth rates
3. Prefer data with clear category dimensions (years, regions, product categories)
4. Avoid vague phrasing; use concrete data-type keywords

Output the search queries directly, one per line, with no other explanation.`))

// extractPromptTmpls hold the per-shape extraction prompts. Each instructs
// the model to emit "label: value" lines in the format the shape validator
// expects; time-series labels must carry a temporal unit (e.g. 2023年).
var extractPromptTmpls = map[types.ChartShape]*template.Template{
	types.ShapeCategorical: template.Must(template.New("extract_bar").Parse(`Extract data suitable for a bar chart from the search results below. Bar charts compare values across categories.

Requirements:
1. Extract at least 3 data points
2. Each data point has a clear category label and a value
3. Values must be concrete numbers (amounts, counts, percentages)
4. Data points must belong to the same comparison dimension
5. If the results lack sufficient data, generate plausible example data for the topic

Search results:
{{.Results}}

Output the data directly in this format:
数据主题:
类别1: 数值1
类别2: 数值2
类别3: 数值3`)),

	types.ShapeTimeSeries: template.Must(template.New("extract_line").Parse(`Extract data suitable for a line chart from the search results below. Line charts show how a value changes over time.

Requirements:
1. Extract at least 3 time points
2. Each data point has a time label (e.g. 2023年, 3月) and a value
3. Time points must be consecutive or logically ordered
4. Values must show a trend
5. If the results lack sufficient data, generate plausible example data for the topic

Search results:
{{.Results}}

Output the data directly in this format:
数据主题:
时间1: 数值1
时间2: 数值2
时间3: 数值3`)),

	types.ShapePartOfWhole: template.Must(template.New("extract_pie").Parse(`Extract data suitable for a pie chart from the search results below. Pie charts show how parts make up a whole.

Requirements:
1. Extract at least 2 parts
2. Each part has a name and a percentage
3. The percentages should sum to roughly 100%
4. Parts must belong to the same whole
5. If the results lack sufficient data, generate plausible example data for the topic

Search results:
{{.Results}}

Output the data directly in this format:
数据主题:
部分1: 百分比1%
部分2: 百分比2%
部分3: 百分比3%`)),
}

// renderQueryPrompt builds the query proposal prompt for a topic.
func renderQueryPrompt(topic string) (string, error) {
	var buf bytes.Buffer
	if err := queryPromptTmpl.Execute(&buf, struct{ Topic string }{Topic: topic}); err != nil {
		return "", fmt.Errorf("rendering query prompt: %w", err)
	}
	return buf.String(), nil
}

// renderExtractPrompt builds the extraction prompt for a shape.
func renderExtractPrompt(shape types.ChartShape, results string) (string, error) {
	tmpl, ok := extractPromptTmpls[shape]
	if !ok {
		return "", fmt.Errorf("no extraction prompt for shape %q", shape)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Results string }{Results: results}); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", shape, err)
	}
	return buf.String(), nil
}
