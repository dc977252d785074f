package journal

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// eventSchema is the strict shape of a journal line. Validation is opt-in;
// normally unknown fields and types pass through for forward compatibility.
const eventSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "testFile": {"type": "string"},
    "title": {"type": "string"},
    "duration": {"type": "number", "minimum": 0},
    "knownFailing": {"type": "boolean"},
    "skip": {"type": "boolean"},
    "todo": {"type": "boolean"},
    "logs": {"type": "array", "items": {"type": "string"}},
    "nonZeroExitCode": {"type": "integer"},
    "signal": {"type": "string"},
    "forcedExit": {"type": "boolean"},
    "chunk": {"type": "string"},
    "err": {
      "type": "object",
      "properties": {
        "message": {"type": "string"},
        "summary": {"type": "string"},
        "stack": {"type": "string"},
        "source": {
          "type": "object",
          "required": ["file", "line"],
          "properties": {
            "file": {"type": "string"},
            "line": {"type": "integer", "minimum": 1}
          }
        },
        "values": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "label": {"type": "string"},
              "formatted": {"type": "string"}
            }
          }
        }
      }
    },
    "stats": {"type": "object"},
    "pendingTests": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

// Validator checks journal lines against the event schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the event schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(eventSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling event schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns an error describing every violation in the line.
func (v *Validator) Validate(line []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(line))
	if err != nil {
		return fmt.Errorf("validating journal line: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid journal line: %s", strings.Join(msgs, "; "))
}
