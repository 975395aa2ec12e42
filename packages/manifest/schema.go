package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// schemaJSON is the structural contract for suite manifests.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["suite", "scenarios"],
  "properties": {
    "suite": {"type": "string", "minLength": 1},
    "config": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "report_useless_tests": {"type": "boolean"},
        "backup_globals": {"type": "boolean"},
        "strict_global_state": {"type": "boolean"},
        "disallow_output": {"type": "boolean"},
        "collect_coverage": {"type": "boolean"}
      }
    },
    "variables": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "scenarios": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "signature": {"type": "string"},
          "groups": {"type": "array", "items": {"type": "string"}},
          "needs": {"type": "array", "items": {"type": "string"}},
          "skip": {"type": "string"},
          "incomplete": {"type": "string"},
          "steps": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["action"],
              "properties": {
                "action": {"type": "string", "pattern": "^[^.\\s]+\\.[^\\s]+$"},
                "args": {"type": "array", "items": {"type": "string"}},
                "expect": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["op"],
                    "properties": {
                      "target": {"type": "string"},
                      "op": {"enum": ["equals", "contains", "matches", "exists"]},
                      "value": {"type": "string"}
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

// Validate checks manifest YAML against the embedded schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting manifest to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(docJSON),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("manifest is invalid:\n  %s", strings.Join(problems, "\n  "))
}

// ValidateFile checks one manifest file against the embedded schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	if err := Validate(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
