package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConvertOptionsSchema describes the JSON option bag accepted by convert, ocr and embedded.
func ConvertOptionsSchema() map[string]any {
	props := map[string]any{
		"ocr":                    map[string]any{"type": "boolean"},
		"withTables":             map[string]any{"type": "boolean"},
		"withImages":             map[string]any{"type": "boolean"},
		"minConfidence":          map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"lineTolerance":          map[string]any{"type": "number", "exclusiveMinimum": 0.0},
		"supplementThreshold":    nonNegativeInt(),
		"fallbackThreshold":      nonNegativeInt(),
		"embeddedSamplePages":    nonNegativeInt(),
		"embeddedSampleMinChars": nonNegativeInt(),
		"maxPages":               nonNegativeInt(),
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// TopicsSchema describes the topics list accepted by extract and export.
func TopicsSchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}
}

func nonNegativeInt() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
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
