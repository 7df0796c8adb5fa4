package render

import (
	"strings"
	"testing"

	"github.com/ashureev/codexr/internal/domain"
)

func TestMarkdownFullAnswer(t *testing.T) {
	explanation := "Finds the provider at start-up."
	a := domain.Answer{
		Context:    "Unity",
		Target:     "Unity Developer",
		Difficulty: "medium",
		Subtasks: []domain.Subtask{
			{Title: "Install", Details: "Use Package Manager.", Steps: []string{"Open it", "Install XRI"}},
		},
		Snippet:       &domain.Snippet{Language: "csharp", Filename: "Setup.cs", Code: "class A {}\n", Explanation: &explanation},
		BestPractices: []string{"Test on device"},
		Gotchas:       []string{},
		Docs:          []domain.DocRef{{Title: "XRI", URL: "https://docs.unity3d.com"}},
	}

	got := Markdown("How do I teleport?", a)

	for _, want := range []string{
		"# How do I teleport?\n",
		"**Context:** Unity",
		"### 1. Install\n\nUse Package Manager.\n\n- Open it\n- Install XRI\n",
		"## Code: `Setup.cs`\n\n```csharp\nclass A {}\n```\n\nFinds the provider at start-up.",
		"## Best Practices\n\n- Test on device\n",
		"- [XRI](https://docs.unity3d.com)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Gotchas") {
		t.Error("empty sections should be omitted")
	}
}

func TestMarkdownSkipsBlankSnippet(t *testing.T) {
	a := domain.NewMessageAnswer("General", "General Developer", "Greeting", "hi")
	a.Snippet = &domain.Snippet{Language: "text", Filename: "x", Code: "  \n"}

	got := Markdown("", a)
	if strings.Contains(got, "## Code") {
		t.Errorf("blank snippet rendered:\n%s", got)
	}
	if strings.HasPrefix(got, "# ") {
		t.Error("empty query should not produce a title")
	}
}

func TestCodeFence(t *testing.T) {
	tests := map[string]string{
		"plain":             "```",
		"has ``` inside":    "````",
		"has ````` inside":  "``````",
		"inline `tick` use": "```",
	}
	for code, want := range tests {
		if got := codeFence(code); got != want {
			t.Errorf("codeFence(%q) = %q, want %q", code, got, want)
		}
	}
}
