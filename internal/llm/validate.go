package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds one compiled validator per schema name. Tutor
// schemas are fixed, so the name identifies the definition.
var compiledSchemas sync.Map

// validateResponse checks raw against schema. A nil schema accepts
// anything. Failures are *ErrInvalidResponse carrying raw.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	reject := func(format string, err error) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, err)}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return reject("invalid JSON: %w", err)
	}
	sch, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := sch.Validate(doc); err != nil {
		return reject("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if sch, ok := compiledSchemas.Load(schema.Name); ok {
		return sch.(*jsonschema.Schema), nil
	}

	// Definitions are Go maps; round-trip them so the compiler sees plain
	// JSON values.
	src, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	actual, _ := compiledSchemas.LoadOrStore(schema.Name, sch)
	return actual.(*jsonschema.Schema), nil
}

// thinkBlock matches the reasoning preamble some local models emit before
// their answer.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// extractJSON returns the outermost JSON object in raw, ignoring any
// surrounding prose, code fences or <think> blocks. Braces inside quoted
// strings are skipped. If no complete object is found raw is returned
// unchanged so validation reports the real content.
func extractJSON(raw json.RawMessage) json.RawMessage {
	s := thinkBlock.ReplaceAllString(string(raw), "")

	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			if depth > 0 {
				inString = !inString
			}
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return json.RawMessage(s[start : i+1])
			}
		}
	}
	return raw
}
