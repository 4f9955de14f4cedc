package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docuvault/internal/common"
)

// BuildDocumentJSONSchema returns the extracted-document JSON-Schema
// (draft 2020-12 subset) as a generic map. The schema stays loose: the
// model's output is repaired by Normalize before this runs, and unknown
// document types are coerced later rather than failing validation.
func BuildDocumentJSONSchema() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}
	partyProps := map[string]any{
		"name":    nullableString,
		"email":   nullableString,
		"phone":   nullableString,
		"address": map[string]any{"type": []string{"object", "null"}},
		"tax_id":  nullableString,
	}

	return map[string]any{
		"type":     "object",
		"required": []string{"document_type"},
		"properties": map[string]any{
			"document_type":    map[string]any{"type": "string"},
			"document_number":  nullableString,
			"reference_number": nullableString,
			"po_number":        nullableString,

			"dates": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"issue_date":    nullableString,
					"due_date":      nullableString,
					"delivery_date": nullableString,
					"payment_date":  nullableString,
				},
			},

			"vendor": map[string]any{
				"type":       []string{"object", "null"},
				"properties": partyProps,
			},
			"customer": map[string]any{
				"type":       []string{"object", "null"},
				"properties": partyProps,
			},

			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"description"},
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"quantity":    map[string]any{"type": []string{"number", "null"}},
						"unit_price":  nullableString,
						"amount":      nullableString,
						"tax":         nullableString,
						"discount":    nullableString,
					},
				},
			},

			"amounts": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"subtotal": nullableString,
					"tax":      nullableString,
					"discount": nullableString,
					"shipping": nullableString,
					"total":    nullableString,
					"currency": nullableString,
					"paid":     nullableString,
					"due":      nullableString,
				},
			},

			"payment": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"method":         nullableString,
					"card_last_four": nullableString,
					"transaction_id": nullableString,
					"bank_account":   nullableString,
				},
			},

			"notes": nullableString,
			"terms": nullableString,
			"confidence_score": map[string]any{
				"type":    []string{"number", "null"},
				"minimum": 0.0,
				"maximum": 1.0,
			},
		},
	}
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
		return common.NewAppError("SCHEMA_VALIDATION", "document does not match schema",
			fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	return nil
}
