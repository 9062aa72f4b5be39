package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the extraction response body. The pipeline
// validates every outgoing result against it, so a rule regression that
// changes the response shape is caught before it leaves the service.
func BuildResultJSONSchema() map[string]any {
	props := map[string]any{
		"name":       nullableString(),
		"phone":      nullableString(),
		"birth_date": nullableString(),
		"experience": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"address":          map[string]any{"type": "string", "minLength": 1},
		"profession":       map[string]any{"type": "string", "minLength": 1},
		"major":            map[string]any{"type": "string", "minLength": 1},
		"cultural_level":   map[string]any{"type": "string", "minLength": 1},
		"foreign_language": map[string]any{"type": "string", "minLength": 1},
	}
	required := []string{"name", "phone", "birth_date", "experience"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
