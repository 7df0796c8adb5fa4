// Package domain contains core domain types for the CodeXR application.
package domain

import "strings"

// Answer is the structured response returned for a single query.
type Answer struct {
	Context       string    `json:"context"`
	Target        string    `json:"target"`
	Difficulty    string    `json:"difficulty"`
	Subtasks      []Subtask `json:"subtasks"`
	Snippet       *Snippet  `json:"snippet"`
	BestPractices []string  `json:"best_practices"`
	Gotchas       []string  `json:"gotchas"`
	Docs          []DocRef  `json:"docs"`
}

// Subtask is one titled unit of work inside an Answer.
type Subtask struct {
	Title   string   `json:"title"`
	Details string   `json:"details"`
	Steps   []string `json:"steps"`
}

// Snippet is an optional code sample attached to an Answer.
type Snippet struct {
	Language    string  `json:"language"`
	Filename    string  `json:"filename"`
	Code        string  `json:"code"`
	Explanation *string `json:"explanation"`
}

// DocRef points at a documentation page.
type DocRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DifficultyBeginner is used for every synthetic answer.
const DifficultyBeginner = "beginner"

// NewMessageAnswer builds an Answer carrying a single informational subtask.
func NewMessageAnswer(context, target, title, details string) Answer {
	return Answer{
		Context:    context,
		Target:     target,
		Difficulty: DifficultyBeginner,
		Subtasks: []Subtask{
			{Title: title, Details: details, Steps: []string{}},
		},
	}.Normalize()
}

// Normalize returns a copy with every defaulted sequence set to an empty,
// non-nil slice so that encoders always emit [] instead of null.
func (a Answer) Normalize() Answer {
	out := a
	if out.Subtasks == nil {
		out.Subtasks = []Subtask{}
	} else {
		subtasks := make([]Subtask, len(a.Subtasks))
		for i, s := range a.Subtasks {
			if s.Steps == nil {
				s.Steps = []string{}
			}
			subtasks[i] = s
		}
		out.Subtasks = subtasks
	}
	if out.BestPractices == nil {
		out.BestPractices = []string{}
	}
	if out.Gotchas == nil {
		out.Gotchas = []string{}
	}
	if out.Docs == nil {
		out.Docs = []DocRef{}
	}
	return out
}

// HasCode reports whether the answer carries a non-blank code snippet.
func (a Answer) HasCode() bool {
	return a.Snippet != nil && strings.TrimSpace(a.Snippet.Code) != ""
}
