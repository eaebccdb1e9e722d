// JSON scenario intake. Uploaded scenarios are schema-checked before the
// decoder sees them, so malformed documents fail with a pointer to the
// offending field instead of a decode error.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "scenario",
  "type": "object",
  "required": ["name", "schedule", "actions"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "start": {
      "type": "object",
      "properties": {
        "position_a": {"type": "number", "minimum": 0, "maximum": 10},
        "position_b": {"type": "number", "minimum": 0, "maximum": 10},
        "resources_a": {"type": "number", "minimum": 0, "maximum": 10},
        "resources_b": {"type": "number", "minimum": 0, "maximum": 10},
        "risk": {"type": "number", "minimum": 0, "maximum": 10},
        "cooperation": {"type": "number", "minimum": 0, "maximum": 10},
        "stability": {"type": "number", "minimum": 0, "maximum": 10}
      },
      "additionalProperties": false
    },
    "schedule": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["matrix"],
        "properties": {
          "matrix": {"type": "string", "minLength": 1},
          "points": {
            "type": "object",
            "propertyNames": {"enum": ["CC", "CD", "DC", "DD"]},
            "additionalProperties": {
              "type": "object",
              "properties": {
                "pos_a": {"type": "number"},
                "pos_b": {"type": "number"},
                "res_cost_a": {"type": "number"},
                "res_cost_b": {"type": "number"},
                "risk": {"type": "number"}
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    },
    "actions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type", "category"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"enum": ["cooperative", "competitive"]},
          "category": {
            "enum": ["standard", "settlement", "reconnaissance", "inspection", "costly_signal"]
          },
          "cost": {"type": "number", "minimum": 0, "maximum": 10},
          "min_risk": {"type": "number", "minimum": 0, "maximum": 10},
          "max_risk": {"type": "number", "minimum": 0, "maximum": 10},
          "narrative": {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("scenario.schema.json", schemaJSON)

// ParseJSON schema-validates and decodes a JSON scenario document, then
// runs the same semantic validation as the YAML path.
func ParseJSON(raw []byte) (*Scenario, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("scenario json: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario json: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
