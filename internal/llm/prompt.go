package llm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractionSystemPrompt is the fixed system instruction for the
// structured-extraction call.
const ExtractionSystemPrompt = "You are a precise document extraction system. Return only valid JSON."

// schemaExample shows the model the target shape by example rather than
// by formal schema; it keeps prompt size down and models follow it well.
var schemaExample = map[string]any{
	"document_type":   "invoice",
	"document_number": "INV-001",
	"dates": map[string]any{
		"issue_date": "2024-01-15",
		"due_date":   "2024-02-15",
	},
	"vendor": map[string]any{
		"name":  "Acme Corp",
		"email": "billing@acme.com",
		"phone": "+1-555-0100",
	},
	"customer": map[string]any{
		"name": "Tech Solutions Inc",
	},
	"items": []map[string]any{
		{
			"description": "Consulting Services",
			"quantity":    10,
			"unit_price":  "150.00",
			"amount":      "1500.00",
		},
	},
	"amounts": map[string]any{
		"subtotal": "1500.00",
		"tax":      "150.00",
		"total":    "1650.00",
		"currency": "USD",
	},
}

// BuildExtractionPrompt assembles the user prompt: task, rules, target
// schema by example, optional type hint, and the OCR text itself.
func BuildExtractionPrompt(ocrText, typeHint string) string {
	var b strings.Builder

	b.WriteString("You are an expert document parser specialized in extracting structured data from invoices, receipts, and financial documents.\n\n")
	b.WriteString("TASK: Extract ALL relevant information from the OCR text below into a structured JSON format.\n\n")
	b.WriteString("RULES:\n")
	for i, rule := range []string{
		"Return ONLY valid JSON - no markdown, no explanations, no preamble",
		"Use null for missing/unknown fields",
		"Extract ALL dates in YYYY-MM-DD format",
		`For amounts, preserve the original format (e.g., "1,500.00" or "1500.00")`,
		"Extract all line items with their details",
		"Identify document type: invoice, receipt, quote, purchase_order, bill, lease, etc.",
		"Extract both vendor (seller) and customer (buyer) information",
		"Include payment information if present",
		"Calculate or extract totals, subtotals, taxes",
		"Be thorough - capture ALL information present",
	} {
		b.WriteString(strconv.Itoa(i+1) + ". " + rule + "\n")
	}
	if typeHint != "" {
		b.WriteString("\nDocument type hint: " + typeHint + "\n")
	}

	b.WriteString("\nEXPECTED JSON SCHEMA:\n")
	b.WriteString(mustJSON(schemaExample))
	b.WriteString("\n\nIMPORTANT:\n")
	b.WriteString("- \"document_type\" is REQUIRED\n")
	b.WriteString("- Extract ALL information visible in the document\n")
	b.WriteString("- For dates, try to parse into YYYY-MM-DD format\n")
	b.WriteString("- For items array, include every line item found\n")
	b.WriteString("- Preserve numerical precision in amounts\n")

	b.WriteString("\nOCR TEXT:\n")
	b.WriteString(ocrText)
	b.WriteString("\n\nReturn the extracted data as JSON:")

	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
