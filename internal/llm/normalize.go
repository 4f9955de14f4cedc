package llm

// enforceObject replaces a missing or null value with an empty object.
func enforceObject(data map[string]any, key string) {
	if v, ok := data[key]; !ok || v == nil {
		data[key] = map[string]any{}
	}
}

// Normalize repairs structurally incomplete model output before schema
// validation: missing containers become empty objects/arrays and an
// absent document_type defaults to "invoice". The repair is in place and
// idempotent; the returned map is the input map.
func Normalize(raw map[string]any) map[string]any {
	if _, ok := raw["document_type"]; !ok {
		raw["document_type"] = "invoice"
	}

	for _, field := range []string{"dates", "parties", "amounts"} {
		enforceObject(raw, field)
	}

	if parties, ok := raw["parties"].(map[string]any); ok {
		enforceObject(parties, "vendor")
		enforceObject(parties, "customer")
	}

	if v, ok := raw["items"]; !ok || v == nil {
		raw["items"] = []any{}
	}

	return raw
}
