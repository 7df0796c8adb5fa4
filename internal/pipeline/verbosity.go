package pipeline

import "strings"

// Verbosity controls how much detail the model is asked for.
type Verbosity string

const (
	VerbosityConcise  Verbosity = "concise"
	VerbosityNormal   Verbosity = "normal"
	VerbosityDetailed Verbosity = "detailed"
)

var verbosityText = map[Verbosity]string{
	VerbosityConcise: "Keep it short: a bullet-point summary with minimal explanation. " +
		"Skip detailed explanations of code snippets.",
	VerbosityNormal: "Give a one-paragraph summary per subtask, a short explanation of any code snippet, " +
		"and list best practices and gotchas briefly.",
	VerbosityDetailed: "Be exhaustive: multi-paragraph details for each subtask covering troubleshooting, " +
		"alternatives and performance notes. Explain code snippets line by line. " +
		"Be thorough with best practices and gotchas.",
}

// Verbosities lists the accepted levels in display order.
func Verbosities() []Verbosity {
	return []Verbosity{VerbosityConcise, VerbosityNormal, VerbosityDetailed}
}

// ParseVerbosity maps free text to a level. Unknown values become normal.
func ParseVerbosity(s string) Verbosity {
	v := Verbosity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := verbosityText[v]; ok {
		return v
	}
	return VerbosityNormal
}

// Instruction returns the prompt text for the level.
func (v Verbosity) Instruction() string {
	if text, ok := verbosityText[v]; ok {
		return text
	}
	return verbosityText[VerbosityNormal]
}
