package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docuvault/internal/entity"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

// Service produces JSON and XLSX exports of the completed corpus.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

type jsonDocument struct {
	ID               string          `json:"id"`
	OriginalFilename string          `json:"original_filename"`
	DocumentType     string          `json:"document_type"`
	ProcessedAt      string          `json:"processed_at"`
	OCRConfidence    *float32        `json:"ocr_confidence"`
	ExtractedData    json.RawMessage `json:"extracted_data"`
	OCRText          *string         `json:"ocr_text,omitempty"`
}

// ExportJSON returns the completed, non-archived documents as a JSON
// array. Raw OCR text is included only when asked for; it dwarfs the
// structured data.
func (s *Service) ExportJSON(ctx context.Context, filter repository.ListFilter, includeOCRText bool) ([]byte, error) {
	start := time.Now()

	docs, err := s.docs.ListCompleted(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	out := make([]jsonDocument, 0, len(docs))
	for _, doc := range docs {
		jd := jsonDocument{
			ID:               doc.ID.String(),
			OriginalFilename: doc.OriginalFilename,
			DocumentType:     orNA(doc.DocumentType),
			OCRConfidence:    doc.OCRConfidence,
			ExtractedData:    doc.ExtractedData,
		}
		if doc.ProcessedAt != nil {
			jd.ProcessedAt = doc.ProcessedAt.Format(time.RFC3339)
		}
		if includeOCRText {
			jd.OCRText = doc.OCRText
		}
		out = append(out, jd)
	}

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	s.logger.Info("export.json.ok", "documents", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return buf, nil
}

// ExportXLSX returns a workbook with one summary row per document and
// one row per extracted line item on a second sheet. Missing values
// render as "N/A" so spreadsheet formulas fail loudly instead of
// silently treating blanks as zero.
func (s *Service) ExportXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	docs, err := s.docs.ListCompleted(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const docSheet = "Documents"
	const itemSheet = "Line Items"
	if err := f.SetSheetName("Sheet1", docSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemSheet); err != nil {
		return nil, err
	}

	docHeaders := []string{
		"Filename",
		"Document Type",
		"Processed Date",
		"Vendor",
		"Total",
		"Currency",
		"Document Number",
		"OCR Confidence",
	}
	writeRow(f, docSheet, 1, toAny(docHeaders))

	itemHeaders := []string{
		"Filename",
		"Description",
		"Quantity",
		"Unit Price",
		"Amount",
	}
	writeRow(f, itemSheet, 1, toAny(itemHeaders))

	docRow, itemRow := 2, 2
	for _, doc := range docs {
		var extracted entity.ExtractedDocument
		if len(doc.ExtractedData) > 0 {
			// Malformed rows still export with their file metadata.
			_ = json.Unmarshal(doc.ExtractedData, &extracted)
		}

		processed := "N/A"
		if doc.ProcessedAt != nil {
			processed = doc.ProcessedAt.Format("2006-01-02")
		}
		confidence := "N/A"
		if doc.OCRConfidence != nil {
			confidence = fmt.Sprintf("%.0f%%", *doc.OCRConfidence*100)
		}

		writeRow(f, docSheet, docRow, []any{
			doc.OriginalFilename,
			orNA(doc.DocumentType),
			processed,
			strPtrOrNA(extracted.Vendor.Name),
			strPtrOrNA(extracted.Amounts.Total),
			strOrNA(extracted.Amounts.Currency),
			strPtrOrNA(extracted.DocumentNumber),
			confidence,
		})
		docRow++

		for _, item := range extracted.Items {
			qty := "N/A"
			if item.Quantity != nil {
				qty = fmt.Sprintf("%v", *item.Quantity)
			}
			writeRow(f, itemSheet, itemRow, []any{
				doc.OriginalFilename,
				strOrNA(item.Description),
				qty,
				strPtrOrNA(item.UnitPrice),
				strPtrOrNA(item.Amount),
			})
			itemRow++
		}
	}

	_ = f.SetColWidth(docSheet, "A", "A", 36)
	_ = f.SetColWidth(docSheet, "B", "C", 16)
	_ = f.SetColWidth(docSheet, "D", "D", 28)
	_ = f.SetColWidth(docSheet, "E", "H", 14)
	_ = f.SetColWidth(itemSheet, "A", "A", 36)
	_ = f.SetColWidth(itemSheet, "B", "B", 48)
	_ = f.SetColWidth(itemSheet, "C", "E", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"line_items", itemRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func strOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func strPtrOrNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
