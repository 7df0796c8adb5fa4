package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "codexr://answer.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func answerSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(document)); err != nil {
			compileErr = fmt.Errorf("add answer schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile answer schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ParseError reports model output that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Violation is a single schema failure at an instance location.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return path + ": " + v.Message
}

// ValidationError lists every schema violation found in a candidate.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// ValidateJSON parses raw model output and validates it. A *ParseError is
// returned for malformed JSON and a *ValidationError for schema violations.
func ValidateJSON(raw []byte) (domain.Answer, error) {
	var candidate any
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(raw)))
	if err := dec.Decode(&candidate); err != nil {
		return domain.Answer{}, &ParseError{Err: err}
	}
	if dec.More() {
		return domain.Answer{}, &ParseError{Err: errors.New("unexpected data after top-level JSON value")}
	}
	return Validate(candidate)
}

// Validate checks an already decoded value (maps, slices, strings, numbers)
// against the Answer schema and returns the typed Answer with defaults filled.
func Validate(candidate any) (domain.Answer, error) {
	sch, err := answerSchema()
	if err != nil {
		return domain.Answer{}, err
	}

	if err := sch.Validate(candidate); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return domain.Answer{}, &ValidationError{Violations: flatten(verr)}
		}
		return domain.Answer{}, fmt.Errorf("validate answer: %w", err)
	}

	data, err := json.Marshal(candidate)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("re-encode answer: %w", err)
	}
	var answer domain.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return domain.Answer{}, fmt.Errorf("decode answer: %w", err)
	}
	return answer.Normalize(), nil
}

// flatten collects the leaf causes of a validation error tree.
func flatten(root *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{Path: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Message < out[j].Message
	})
	return dedupe(out)
}

func dedupe(in []Violation) []Violation {
	out := in[:0]
	for i, v := range in {
		if i > 0 && v == in[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
