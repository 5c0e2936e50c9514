// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"bytes"
	"fmt"
	"text/template"
)

// The refinement prompts instruct the model to answer in a fixed JSON shape
// so the parsers in nodes.go can extract queries and structures without
// free-text heuristics. Prompt assembly is the only logic these nodes add;
// the model does the rest.

// structurePromptTmpl asks for the report skeleton: an ordered list of
// section titles with guidance on what each should cover.
var structurePromptTmpl = template.Must(template.New("structure").Parse(`You are planning a research report on the following topic:

{{.Topic}}

Propose a report structure as an ordered list of sections. Each section needs a short title and one or two sentences of guidance describing what the section should cover.

Respond with a JSON array only. Each element must have exactly two fields:
[{"title": "...", "content": "..."}]

Do not include any text outside the JSON array.`))

// firstSearchPromptTmpl asks for the initial query of a section that has no
// prior fragment.
var firstSearchPromptTmpl = template.Must(template.New("first_search").Parse(`You are researching one section of a report.

Section title: {{.Title}}
Section guidance: {{.Guidance}}

Generate a single web search query that will find the most useful material for this section, and briefly explain your reasoning.

Respond with a JSON object only:
{"search_query": "...", "reasoning": "..."}`))

// reflectionPromptTmpl asks for a corrective query given the section's
// current fragment.
var reflectionPromptTmpl = template.Must(template.New("reflection").Parse(`You are improving one section of a report.

Section title: {{.Title}}
Section guidance: {{.Guidance}}

Current section text:
{{.Fragment}}

Identify what is missing, thin, or unsupported in the current text, and generate a single web search query that would fill the most important gap. Briefly explain your reasoning.

Respond with a JSON object only:
{"search_query": "...", "reasoning": "..."}`))

// firstSummaryPromptTmpl produces the initial fragment from the first
// round's search results.
var firstSummaryPromptTmpl = template.Must(template.New("first_summary").Parse(`You are writing one section of a research report.

Section title: {{.Title}}
Section guidance: {{.Guidance}}

Search query used: {{.Query}}

Search results:
{{.Results}}

Write the section text based on the search results and the guidance. Write flowing prose, cite concrete facts and figures from the results where available, and stay on the section's topic. If the results contain no usable evidence, write the best section you can from the guidance alone.

Respond with the section text only.`))

// reflectionSummaryPromptTmpl rewrites the fragment so it supersedes the
// prior version, folding in the new round's results.
var reflectionSummaryPromptTmpl = template.Must(template.New("reflection_summary").Parse(`You are revising one section of a research report.

Section title: {{.Title}}
Section guidance: {{.Guidance}}

Current section text:
{{.Prior}}

Search query used: {{.Query}}

New search results:
{{.Results}}

Rewrite the section so it incorporates anything useful from the new results while keeping everything that was already good. The rewritten text replaces the current text entirely.

Respond with the section text only.`))

// formatReportPromptTmpl asks the model to polish the assembled report.
var formatReportPromptTmpl = template.Must(template.New("format_report").Parse(`You are formatting a finished research report.

Report draft:
{{.Draft}}

Produce the final report in Markdown: a single top-level title, then each section under a second-level heading, in the given order. Improve transitions and remove repetition, but do not drop sections or invent content.

Respond with the Markdown report only.`))

// render executes tmpl with data and returns the prompt text.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
