// ABOUTME: Package report renders a store.Store audit trail into a
// ABOUTME: Markdown run summary, and separately into sanitized HTML for
// ABOUTME: package webstatus to serve, mirroring the teacher's
// ABOUTME: string-builder Markdown plus goldmark-to-HTML pipeline.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/2389-research/conveyor/store"
)

// Markdown renders one Markdown document summarizing every pipeline run
// known to s, most recently active first. Grounded on
// spec/store/manager.go's generateMarkdown, adapted from spec/card state
// to pipeline/stage outcome but keeping its plain string-concatenation
// style rather than reaching for a templating engine.
func Markdown(s *store.Store) (string, error) {
	summaries, err := s.Summarize()
	if err != nil {
		return "", fmt.Errorf("report: %w", err)
	}

	out := "# Run Summary\n\n"
	if len(summaries) == 0 {
		out += "No runs recorded yet.\n"
		return out, nil
	}

	for _, rs := range summaries {
		out += "## " + rs.PipelineName + "\n\n"
		out += fmt.Sprintf("- pipeline id: `%s`\n", rs.PipelineID)
		out += fmt.Sprintf("- stages recorded: %d\n", rs.StageCount)
		out += fmt.Sprintf("- last status: **%s**\n", rs.LastStatus)
		out += fmt.Sprintf("- last recorded: %s\n\n", rs.LastRecorded.Format("2006-01-02 15:04:05 MST"))
	}
	return out, nil
}

// scriptTagPattern and dangerousSchemePattern mirror spec/web/templates.go's
// sanitizeHTML, trimmed to the two constructs this report's generated
// Markdown could plausibly smuggle in: a pipeline or stage name is
// free-form operator input, not trusted template source.
var (
	scriptTagPattern       = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	dangerousSchemePattern = regexp.MustCompile(`(?i)(href|src)\s*=\s*["']?\s*(javascript|vbscript)\s*:`)
)

// HTML converts a Markdown run summary to sanitized HTML via goldmark, for
// package webstatus to embed in its /runs/{id} page.
func HTML(markdown string) template.HTML {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(sanitize(buf.String()))
}

func sanitize(html string) string {
	html = scriptTagPattern.ReplaceAllString(html, "")
	html = dangerousSchemePattern.ReplaceAllStringFunc(html, func(match string) string {
		eqIdx := strings.IndexByte(match, '=')
		if eqIdx < 0 {
			return match
		}
		return match[:eqIdx+1] + `"#"`
	})
	return html
}
