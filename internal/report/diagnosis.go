package report

import (
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"prithvipulse/models"
)

// DiagnosisMarkdown renders a diagnosis as a printable markdown sheet
func DiagnosisMarkdown(result models.DiagnosisResult, outcome models.Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(result.DiseaseName))

	status := "Diseased"
	switch {
	case !result.IsPlant:
		status = "Not assessed"
	case result.Healthy:
		status = "Healthy"
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Crop | %s |\n", escapeCell(result.LocalName))
	fmt.Fprintf(&b, "| Status | %s |\n", status)
	fmt.Fprintf(&b, "| Confidence | %.0f%% |\n", result.Confidence*100)
	fmt.Fprintf(&b, "| Source | %s |\n", escapeCell(result.Source))
	if result.Method != "" {
		fmt.Fprintf(&b, "| Method | %s |\n", escapeCell(result.Method))
	}
	if outcome.RequestID != "" {
		fmt.Fprintf(&b, "| Request | `%s` |\n", outcome.RequestID)
	}
	b.WriteString("\n")

	if result.VisualSymptoms != "" {
		fmt.Fprintf(&b, "## Symptoms\n\n%s\n\n", escape(result.VisualSymptoms))
	}

	if result.VisualAdvice != nil {
		fmt.Fprintf(&b, "## Recommended medicine\n\n**%s**\n\n", escape(result.VisualAdvice.MedicineName))
	}

	if len(result.Treatment) > 0 {
		b.WriteString("## Treatment\n\n")
		for i, step := range result.Treatment {
			fmt.Fprintf(&b, "%d. %s\n", i+1, escape(step))
		}
		b.WriteString("\n")
	}

	if len(result.PreventativeMeasures) > 0 {
		b.WriteString("## Prevention\n\n")
		for _, m := range result.PreventativeMeasures {
			fmt.Fprintf(&b, "- %s\n", escape(m))
		}
		b.WriteString("\n")
	}

	if outcome.FellBack() {
		fmt.Fprintf(&b, "> The AI backend could not be reached (%s). The guidance above explains how to recover.\n", outcome.Failure)
	}

	return b.String()
}

// DiagnosisHTML renders the markdown sheet as a standalone HTML page. Raw HTML
// coming from backend strings is dropped. The renderer writes the title as is,
// so it is escaped here.
func DiagnosisHTML(result models.DiagnosisResult, outcome models.Outcome) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Diagnosis - " + stdhtml.EscapeString(strings.TrimSpace(result.DiseaseName)),
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
	})
	return markdown.ToHTML([]byte(DiagnosisMarkdown(result, outcome)), p, renderer)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`,
)

func escape(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escape(s), "|", `\|`)
}
