package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/docuvault/internal/entity"
)

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "No documents available.", BuildContext(nil))
}

func TestBuildContextSummaryAndBlocks(t *testing.T) {
	ocrText := "raw recognized text that must stay out of the prompt"
	docs := []*entity.Document{
		completedDoc("march.pdf", "invoice", "100.00"),
		completedDoc("april.pdf", "invoice", "40.00"),
		completedDoc("lunch.png", "receipt", "12.50"),
	}
	docs[0].OCRText = &ocrText

	out := BuildContext(docs)

	assert.Contains(t, out, "Total documents: 3")
	assert.Contains(t, out, "invoice=2")
	assert.Contains(t, out, "receipt=1")
	assert.Contains(t, out, "--- Document 1 ---")
	assert.Contains(t, out, "Filename: march.pdf")
	assert.Contains(t, out, "OCR Confidence: 85%")
	assert.Contains(t, out, `"total": "100.00"`)
	assert.NotContains(t, out, ocrText)
}

func TestBuildContextMissingFields(t *testing.T) {
	docs := []*entity.Document{{OriginalFilename: "bare.pdf"}}
	out := BuildContext(docs)

	assert.Contains(t, out, "Type: unknown")
	assert.Contains(t, out, "Date: N/A")
	assert.Contains(t, out, "OCR Confidence: N/A")
}
