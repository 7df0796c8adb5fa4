package pipeline

import (
	"strings"
	"text/template"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/schema"
)

var promptTemplate = template.Must(template.New("prompt").Parse(`
You are CodeXR, an expert AR/VR coding assistant. Give comprehensive, structured answers to developer questions about AR/VR development.
Your response MUST be valid JSON that strictly follows this JSON Schema:
{{.Schema}}

Include ALL fields from the schema, even when empty ([] for lists, null for optional objects).
Infer the context, target and difficulty fields from the question.
Give concrete steps. When a code snippet is needed, include language, filename, code and explanation.
Always include best_practices and gotchas relevant to the question, even if short.
If web search results are provided, use them in your answer, especially for docs.

User Query: {{.Query}}
Verbosity Level: {{.Verbosity}}
{{- if .Docs}}

Grounding Information from Web Search:
{{- range .Docs}}
- Title: {{.Title}}
  URL: {{.URL}}
{{- end}}
{{- end}}

Remember: Output ONLY the JSON. No conversational text outside the JSON.
`))

type promptData struct {
	Schema    string
	Query     string
	Verbosity string
	Docs      []domain.DocRef
}

func buildPrompt(query string, verbosity Verbosity, docs []domain.DocRef) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Schema:    schema.Document(),
		Query:     query,
		Verbosity: verbosity.Instruction(),
		Docs:      docs,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
