package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docuvault/constants"
	"github.com/joseph-ayodele/docuvault/internal/entity"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

type stubDocs struct {
	repository.DocumentRepository
	docs []*entity.Document
}

func (s *stubDocs) ListCompleted(_ context.Context, _ repository.ListFilter) ([]*entity.Document, error) {
	return s.docs, nil
}

func sampleDocument(t *testing.T) *entity.Document {
	t.Helper()
	vendor := "ACME Corp"
	total := "425.50"
	qty := 2.0
	unit := "200.00"
	amount := "400.00"
	number := "INV-042"
	ocrText := "raw ocr text"
	conf := float32(0.91)
	processed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	docType := "invoice"

	extracted := entity.NewExtractedDocument(docType)
	extracted.Vendor.Name = &vendor
	extracted.Amounts.Total = &total
	extracted.Amounts.Currency = "EUR"
	extracted.DocumentNumber = &number
	extracted.Items = []entity.LineItem{
		{Description: "widgets", Quantity: &qty, UnitPrice: &unit, Amount: &amount},
		{Description: "shipping"},
	}
	data, err := json.Marshal(extracted)
	require.NoError(t, err)

	return &entity.Document{
		ID:               uuid.New(),
		OriginalFilename: "june-invoice.pdf",
		Status:           constants.StatusCompleted,
		ProcessedAt:      &processed,
		OCRText:          &ocrText,
		OCRConfidence:    &conf,
		DocumentType:     &docType,
		ExtractedData:    data,
	}
}

func TestExportJSON(t *testing.T) {
	doc := sampleDocument(t)
	svc := NewService(&stubDocs{docs: []*entity.Document{doc}}, nil)

	out, err := svc.ExportJSON(context.Background(), repository.ListFilter{}, false)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "june-invoice.pdf", rows[0]["original_filename"])
	assert.Equal(t, "invoice", rows[0]["document_type"])
	assert.NotContains(t, rows[0], "ocr_text")

	withText, err := svc.ExportJSON(context.Background(), repository.ListFilter{}, true)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(withText, &rows))
	assert.Equal(t, "raw ocr text", rows[0]["ocr_text"])
}

func TestExportXLSX(t *testing.T) {
	doc := sampleDocument(t)
	bare := &entity.Document{
		ID:               uuid.New(),
		OriginalFilename: "mystery.png",
		Status:           constants.StatusCompleted,
	}
	svc := NewService(&stubDocs{docs: []*entity.Document{doc, bare}}, nil)

	out, err := svc.ExportXLSX(context.Background(), repository.ListFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Filename", rows[0][0])
	assert.Equal(t, "june-invoice.pdf", rows[1][0])
	assert.Equal(t, "ACME Corp", rows[1][3])
	assert.Equal(t, "425.50", rows[1][4])
	assert.Equal(t, "EUR", rows[1][5])
	assert.Equal(t, "INV-042", rows[1][6])
	assert.Equal(t, "91%", rows[1][7])

	// the undocumented row degrades to N/A, never blank
	assert.Equal(t, "mystery.png", rows[2][0])
	assert.Equal(t, "N/A", rows[2][1])
	assert.Equal(t, "N/A", rows[2][3])

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "widgets", items[1][1])
	assert.Equal(t, "2", items[1][2])
	assert.Equal(t, "200.00", items[1][3])
	assert.Equal(t, "shipping", items[2][1])
	assert.Equal(t, "N/A", items[2][2])
}
