package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/docuvault/internal/entity"
)

// BuildContext renders the document corpus into the prompt context: a
// summary header followed by one block per document. Raw OCR text is
// deliberately excluded; the structured extraction is what the model
// reasons over.
func BuildContext(docs []*entity.Document) string {
	if len(docs) == 0 {
		return "No documents available."
	}

	var b strings.Builder
	b.WriteString("=== SUMMARY ===\n")
	fmt.Fprintf(&b, "Total documents: %d\n", len(docs))

	counts := map[string]int{}
	var order []string
	for _, doc := range docs {
		t := docTypeOf(doc)
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	var parts []string
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	fmt.Fprintf(&b, "Document types: %s\n", strings.Join(parts, ", "))
	b.WriteString("\n=== DOCUMENTS ===\n")

	for i, doc := range docs {
		fmt.Fprintf(&b, "\n--- Document %d ---\n", i+1)
		fmt.Fprintf(&b, "Filename: %s\n", doc.OriginalFilename)
		fmt.Fprintf(&b, "Type: %s\n", docTypeOf(doc))
		if doc.ProcessedAt != nil {
			fmt.Fprintf(&b, "Date: %s\n", doc.ProcessedAt.Format("2006-01-02"))
		} else {
			b.WriteString("Date: N/A\n")
		}
		if doc.OCRConfidence != nil {
			fmt.Fprintf(&b, "OCR Confidence: %.0f%%\n", *doc.OCRConfidence*100)
		} else {
			b.WriteString("OCR Confidence: N/A\n")
		}
		if len(doc.ExtractedData) > 0 {
			b.WriteString("\nExtracted Data:\n")
			b.WriteString(prettyJSON(doc.ExtractedData))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// BuildUserPrompt wraps the rendered corpus and the question for the
// model, steering it away from boilerplate sections.
func BuildUserPrompt(question, context string) string {
	return "AVAILABLE DOCUMENTS:\n" + context + "\n\nUSER QUESTION:\n" + question + `

Respond according to your role. Be helpful, clear, and precise. Match your response style to the question - don't add unnecessary sections like "Analysis" or "Recommendations" unless they're relevant to what the user asked.`
}

func docTypeOf(doc *entity.Document) string {
	if doc.DocumentType != nil && *doc.DocumentType != "" {
		return *doc.DocumentType
	}
	return "unknown"
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
