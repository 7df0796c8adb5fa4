// Package schema holds the Answer JSON Schema and validates model output
// against it.
package schema

// document is the JSON Schema every generated Answer must satisfy. It is
// compiled for validation and embedded verbatim in the model prompt.
const document = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Answer",
  "type": "object",
  "required": ["context", "target", "difficulty", "subtasks"],
  "properties": {
    "context": {"type": "string"},
    "target": {"type": "string"},
    "difficulty": {"type": "string"},
    "subtasks": {
      "type": "array",
      "items": {"$ref": "#/$defs/Subtask"}
    },
    "snippet": {
      "anyOf": [
        {"$ref": "#/$defs/Snippet"},
        {"type": "null"}
      ],
      "default": null
    },
    "best_practices": {
      "type": "array",
      "items": {"type": "string"},
      "default": []
    },
    "gotchas": {
      "type": "array",
      "items": {"type": "string"},
      "default": []
    },
    "docs": {
      "type": "array",
      "items": {"$ref": "#/$defs/DocRef"},
      "default": []
    }
  },
  "$defs": {
    "Subtask": {
      "type": "object",
      "required": ["title", "details"],
      "properties": {
        "title": {"type": "string"},
        "details": {"type": "string"},
        "steps": {
          "type": "array",
          "items": {"type": "string"},
          "default": []
        }
      }
    },
    "Snippet": {
      "type": "object",
      "required": ["language", "filename", "code"],
      "properties": {
        "language": {"type": "string"},
        "filename": {"type": "string"},
        "code": {"type": "string"},
        "explanation": {
          "type": ["string", "null"],
          "default": null
        }
      }
    },
    "DocRef": {
      "type": "object",
      "required": ["title", "url"],
      "properties": {
        "title": {"type": "string"},
        "url": {"type": "string"}
      }
    }
  }
}`

// Document returns the Answer JSON Schema as indented JSON text.
func Document() string {
	return document
}
