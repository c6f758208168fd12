package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrCorrupt marks an unrecoverable registry document. Callers treat it
// as fatal: the server refuses to start rather than silently rebuild.
var ErrCorrupt = errors.New("registry document is corrupt")

// registrySchema describes the persisted registry document. Validation
// runs before decoding so a malformed document is reported as corruption
// with the offending paths, not as a stray unmarshal error.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["next_project_id", "projects"],
  "properties": {
    "next_project_id": {"type": "integer", "minimum": 0},
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "tasks"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "name": {"type": "string"},
          "description": {"type": "string"},
          "next_task_id": {"type": "integer", "minimum": 0},
          "tasks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "title"],
              "properties": {
                "id": {"type": "integer", "minimum": 0},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "state": {"enum": ["Todo", "InProgress", "Blocked", "Done", ""]},
                "dependencies": {"type": "array", "items": {"type": "integer"}},
                "log": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["timestamp", "entry_type"],
                    "properties": {
                      "timestamp": {"type": "integer"},
                      "entry_type": {
                        "oneOf": [
                          {"const": "Opened"},
                          {
                            "type": "object",
                            "properties": {
                              "Comment": {"type": "string"},
                              "StateChangedTo": {"enum": ["Todo", "InProgress", "Blocked", "Done"]}
                            },
                            "minProperties": 1,
                            "maxProperties": 1,
                            "additionalProperties": false
                          }
                        ]
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(registrySchema)

// ValidateRegistryDocument checks a raw registry document against the
// schema. A validation failure wraps ErrCorrupt.
func ValidateRegistryDocument(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%w: %s", ErrCorrupt, strings.Join(problems, "; "))
}
