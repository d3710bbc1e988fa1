package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildBillFieldsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Nothing is required: missing fields degrade to empty string
// and low confidence instead of failing the whole call.
func BuildBillFieldsJSONSchema() map[string]any {
	confLevel := map[string]any{
		"type": "string",
		"enum": []string{"high", "medium", "low"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"customer_name": map[string]any{"type": "string"},
			"amount":        map[string]any{"type": "string", "pattern": `^\d+(\.\d+)?$`},
			"date":          map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"bill_number":   map[string]any{"type": "string"},
			"vendor_name":   map[string]any{"type": "string"},
			"confidence": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"customer": confLevel,
					"amount":   confLevel,
					"date":     confLevel,
				},
			},
		},
	}
}

// ValidateJSONAgainstSchema validates doc against the generic-map schema.
func ValidateJSONAgainstSchema(schema map[string]any, doc []byte) error {
	sb, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiled, err := jsonschema.CompileString("billfields.json", string(sb))
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return compiled.Validate(v)
}
