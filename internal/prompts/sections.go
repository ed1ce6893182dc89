package prompts

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/camelrate/internal/scoring"
)

const (
	sectionWorkflow     = "Workflow Checklist"
	sectionInstructions = "Instructions"
	sectionGender       = "Gender Context (Provided)"
)

// Section is a named block of a system prompt. Text holds the full block,
// heading included.
type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// splitSections divides text at top-level markdown headings ("# Name").
// Content before the first heading becomes an unnamed section.
func splitSections(text string) []Section {
	var (
		sections []Section
		current  *Section
		body     strings.Builder
	)

	flush := func() {
		if current == nil && strings.TrimSpace(body.String()) == "" {
			body.Reset()
			return
		}
		s := Section{Text: strings.TrimRight(body.String(), "\n")}
		if current != nil {
			s.Name = current.Name
		}
		sections = append(sections, s)
		body.Reset()
	}

	for line := range strings.Lines(text) {
		if name, ok := heading(line); ok {
			flush()
			current = &Section{Name: name}
		}
		body.WriteString(line)
	}
	flush()

	return sections
}

func heading(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "# ")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// normalizeSection ensures s.Text starts with its heading.
func normalizeSection(s Section) Section {
	s.Text = strings.TrimRight(s.Text, "\n")
	if s.Name == "" {
		return s
	}
	if name, ok := heading(firstLine(s.Text)); ok && strings.EqualFold(name, s.Name) {
		return s
	}
	s.Text = "# " + s.Name + "\n" + s.Text
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func render(sections []Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Text
	}
	return strings.Join(parts, "\n\n")
}

func genderSection(g scoring.Gender) Section {
	upper := strings.ToUpper(string(g))
	return Section{
		Name: sectionGender,
		Text: fmt.Sprintf(
			"# %s\nThe camel's gender has been identified as **%s**. "+
				"Please apply the %s-specific rules strictly when evaluating attributes. "+
				"If the visual characteristics do not match the provided gender, note this in "+
				"your analysis but still apply the gender-specific scoring guidelines.",
			sectionGender, upper, upper,
		),
	}
}

// withGender returns a copy of sections with the gender context inserted
// before the workflow checklist, else after the instructions, else after the
// first section. Unknown gender returns sections unchanged.
func withGender(sections []Section, g scoring.Gender) []Section {
	if !g.Known() {
		return sections
	}

	at := insertionPoint(sections)
	out := make([]Section, 0, len(sections)+1)
	out = append(out, sections[:at]...)
	out = append(out, genderSection(g))
	return append(out, sections[at:]...)
}

func insertionPoint(sections []Section) int {
	if i := indexOf(sections, sectionWorkflow); i >= 0 {
		return i
	}
	if i := indexOf(sections, sectionInstructions); i >= 0 {
		return i + 1
	}
	return min(1, len(sections))
}

func indexOf(sections []Section, name string) int {
	for i, s := range sections {
		if strings.EqualFold(s.Name, name) {
			return i
		}
	}
	return -1
}
