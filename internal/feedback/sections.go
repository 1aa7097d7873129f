package feedback

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is one photo's worth of narrative feedback.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// GenericTitle is used when the source text carries no "Photo N" heading.
const GenericTitle = "Feedback"

// Heading lines look like "Photo 3:" or "Image 12:", case-insensitive.
var sectionHeading = regexp.MustCompile(`(?i)^\s*(photo|image)\s+(\d+)\s*:\s*`)

// SplitSections parses raw analysis text into ordered per-photo sections.
// Lines before the first heading are discarded, section bodies are trimmed,
// and sections left with an empty body are dropped. Text with no usable
// headings becomes a single generically-titled section; empty input yields a
// single section with an empty body so callers always have something to
// render.
func SplitSections(raw string) []Section {
	if strings.TrimSpace(raw) == "" {
		return []Section{{Title: GenericTitle, Body: ""}}
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var out []Section
	var title string
	var body []string

	flush := func() {
		if title == "" {
			return
		}
		trimmed := strings.TrimSpace(strings.Join(body, "\n"))
		if trimmed != "" {
			out = append(out, Section{Title: title, Body: trimmed})
		}
	}

	for _, line := range lines {
		m := sectionHeading.FindStringSubmatch(line)
		if m != nil {
			flush()
			title = "Photo " + m[2]
			body = nil
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(out) == 0 {
		return []Section{{Title: GenericTitle, Body: strings.TrimSpace(raw)}}
	}
	return out
}

// FormatExport renders sections back into the shareable plain-text document.
// A single section exports as its bare body; multiple sections export as
// "Title:" blocks separated by a blank line, the same format SplitSections
// consumes.
func FormatExport(sections []Section) string {
	if len(sections) == 0 {
		return ""
	}
	if len(sections) == 1 {
		return sections[0].Body
	}

	blocks := make([]string, len(sections))
	for i, s := range sections {
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Photo %d", i+1)
		}
		blocks[i] = fmt.Sprintf("%s:\n%s\n", title, s.Body)
	}
	return strings.Join(blocks, "\n")
}
