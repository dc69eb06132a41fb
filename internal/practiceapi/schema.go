package practiceapi

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema names. Each is compiled once on first use.
const (
	SchemaGenerateProblemRequest = "generate-problem-request"
	SchemaProblem                = "problem"
	SchemaGradeRequest           = "grade-request"
	SchemaGradeResponse          = "grade-response"
)

const nullableString = `{"type": ["string", "null"]}`

var schemaSources = map[string]string{
	SchemaGenerateProblemRequest: `{
		"type": "object",
		"required": ["primitive", "topic"],
		"properties": {
			"primitive": {"type": "string", "minLength": 1},
			"topic": {"type": "string", "minLength": 1},
			"difficulty": {"type": "integer"},
			"previous_problem": ` + nullableString + `
		}
	}`,
	SchemaProblem: `{
		"type": "object",
		"required": ["problem_text", "correct_answer"],
		"properties": {
			"problem_text": {"type": "string", "minLength": 1},
			"correct_answer": {"type": "string", "minLength": 1},
			"hint1": ` + nullableString + `,
			"hint2": ` + nullableString + `,
			"worked_solution": ` + nullableString + `,
			"chemistry_connection": ` + nullableString + `
		}
	}`,
	SchemaGradeRequest: `{
		"type": "object",
		"required": ["problem_id", "problem_text", "correct_answer", "student_answer", "primitive", "topic"],
		"properties": {
			"problem_id": {"type": "string"},
			"problem_text": {"type": "string", "minLength": 1},
			"correct_answer": {"type": "string"},
			"student_answer": {"type": "string"},
			"primitive": {"type": "string", "minLength": 1},
			"topic": {"type": "string", "minLength": 1},
			"hints_given": {"type": "integer", "minimum": 0}
		}
	}`,
	SchemaGradeResponse: `{
		"type": "object",
		"required": ["correct", "feedback"],
		"properties": {
			"correct": {"type": "boolean"},
			"feedback": {"type": "string"},
			"worked_example": ` + nullableString + `,
			"mastery_progress": {"type": "number"},
			"next_problem": {
				"anyOf": [
					{"type": "null"},
					{"$ref": "schema://problem.json"}
				]
			}
		}
	}`,
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	for name, src := range schemaSources {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			compileErr = fmt.Errorf("parse schema %q: %w", name, err)
			return
		}
		if err := c.AddResource(schemaURL(name), doc); err != nil {
			compileErr = fmt.Errorf("add schema %q: %w", name, err)
			return
		}
	}
	compiled = make(map[string]*jsonschema.Schema, len(schemaSources))
	for name := range schemaSources {
		s, err := c.Compile(schemaURL(name))
		if err != nil {
			compileErr = fmt.Errorf("compile schema %q: %w", name, err)
			return
		}
		compiled[name] = s
	}
}

func schemaURL(name string) string {
	return fmt.Sprintf("schema://%s.json", name)
}

// Validate checks raw JSON against the named schema.
func Validate(name string, raw []byte) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return compileErr
	}
	s, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
