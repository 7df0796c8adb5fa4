// Package render formats answers for display.
package render

import (
	"fmt"
	"strings"

	"github.com/ashureev/codexr/internal/domain"
)

// Markdown renders an Answer as a Markdown document, the layout used by the
// web page and the CLI.
func Markdown(query string, a domain.Answer) string {
	var b strings.Builder

	if query != "" {
		fmt.Fprintf(&b, "# %s\n\n", query)
	}
	fmt.Fprintf(&b, "**Context:** %s · **Target:** %s · **Difficulty:** %s\n\n", a.Context, a.Target, a.Difficulty)

	if len(a.Subtasks) > 0 {
		b.WriteString("## Subtasks\n\n")
		for i, st := range a.Subtasks {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, st.Title)
			if st.Details != "" {
				b.WriteString(st.Details + "\n\n")
			}
			for _, step := range st.Steps {
				fmt.Fprintf(&b, "- %s\n", step)
			}
			if len(st.Steps) > 0 {
				b.WriteString("\n")
			}
		}
	}

	if a.HasCode() {
		s := a.Snippet
		fmt.Fprintf(&b, "## Code: `%s`\n\n", s.Filename)
		fence := codeFence(s.Code)
		fmt.Fprintf(&b, "%s%s\n%s\n%s\n\n", fence, s.Language, strings.TrimRight(s.Code, "\n"), fence)
		if s.Explanation != nil && *s.Explanation != "" {
			b.WriteString(*s.Explanation + "\n\n")
		}
	}

	writeList(&b, "Best Practices", a.BestPractices)
	writeList(&b, "Gotchas", a.Gotchas)

	if len(a.Docs) > 0 {
		b.WriteString("## Docs\n\n")
		for _, d := range a.Docs {
			fmt.Fprintf(&b, "- [%s](%s)\n", d.Title, d.URL)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// codeFence picks a backtick fence longer than any run inside code.
func codeFence(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
