package views

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Explanation is the LLM explanation split into its sections
type Explanation struct {
	Summary        string
	VisualAnalysis string
	Evidence       []string
}

var (
	sectionHeading = regexp.MustCompile(`(?m)^##\s+(.+?)\s*$`)
	bulletSplit    = regexp.MustCompile(`(?m)(?:^|\s)[-*]\s+`)
)

// ParseExplanation extracts the "Explanation", "Visual Analysis" and "Evidence Used"
// sections. When no Explanation section is found the whole text becomes the summary.
func ParseExplanation(md string) Explanation {
	sections := splitSections(md)

	e := Explanation{
		Summary:        sections["Explanation"],
		VisualAnalysis: sections["Visual Analysis"],
	}
	if ev := sections["Evidence Used"]; ev != "" {
		for _, item := range bulletSplit.Split(ev, -1) {
			if item = strings.TrimSpace(item); item != "" {
				e.Evidence = append(e.Evidence, item)
			}
		}
	}
	if e.Summary == "" {
		e.Summary = strings.TrimSpace(md)
	}
	return e
}

// splitSections maps each "## Heading" to the trimmed text up to the next heading
func splitSections(md string) map[string]string {
	out := map[string]string{}
	locs := sectionHeading.FindAllStringSubmatchIndex(md, -1)
	for i, loc := range locs {
		name := md[loc[2]:loc[3]]
		end := len(md)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if _, seen := out[name]; !seen {
			out[name] = strings.TrimSpace(md[loc[1]:end])
		}
	}
	return out
}

// RenderMarkdown converts backend markdown to HTML. Raw HTML in the input is dropped.
func RenderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}
