package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmptyPayload(t *testing.T) {
	out := Normalize(map[string]any{})

	assert.Equal(t, "invoice", out["document_type"])
	assert.Equal(t, map[string]any{}, out["dates"])
	assert.Equal(t, map[string]any{}, out["amounts"])
	assert.Equal(t, []any{}, out["items"])

	parties := out["parties"].(map[string]any)
	assert.Equal(t, map[string]any{}, parties["vendor"])
	assert.Equal(t, map[string]any{}, parties["customer"])
}

func TestNormalizeReplacesNullContainers(t *testing.T) {
	out := Normalize(map[string]any{
		"document_type": "receipt",
		"dates":         nil,
		"parties":       nil,
		"amounts":       nil,
		"items":         nil,
	})

	assert.Equal(t, "receipt", out["document_type"])
	assert.Equal(t, map[string]any{}, out["dates"])
	assert.Equal(t, []any{}, out["items"])
	parties := out["parties"].(map[string]any)
	assert.Equal(t, map[string]any{}, parties["vendor"])
}

func TestNormalizePreservesContent(t *testing.T) {
	out := Normalize(map[string]any{
		"document_type": "quote",
		"amounts":       map[string]any{"total": "120.00"},
		"parties": map[string]any{
			"vendor": map[string]any{"name": "ACME"},
		},
		"items": []any{map[string]any{"description": "widget"}},
	})

	assert.Equal(t, "quote", out["document_type"])
	assert.Equal(t, "120.00", out["amounts"].(map[string]any)["total"])
	parties := out["parties"].(map[string]any)
	assert.Equal(t, "ACME", parties["vendor"].(map[string]any)["name"])
	assert.Equal(t, map[string]any{}, parties["customer"])
	assert.Len(t, out["items"], 1)
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize(map[string]any{})
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}
