package processor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docuvault/constants"
	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/entity"
	"github.com/joseph-ayodele/docuvault/internal/ocr"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

// memDocs is an in-memory DocumentRepository.
type memDocs struct {
	docs map[uuid.UUID]*entity.Document
}

func newMemDocs() *memDocs { return &memDocs{docs: map[uuid.UUID]*entity.Document{}} }

func (m *memDocs) Create(_ context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Status == "" {
		doc.Status = constants.StatusPending
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *memDocs) SetStatus(_ context.Context, id uuid.UUID, status constants.DocumentStatus, processedAt *time.Time) error {
	doc, ok := m.docs[id]
	if !ok {
		return common.ErrNotFound
	}
	doc.Status = status
	if processedAt != nil {
		doc.ProcessedAt = processedAt
	}
	return nil
}

func (m *memDocs) SaveOCRResult(_ context.Context, id uuid.UUID, text string, confidence float32, seconds float64) error {
	doc := m.docs[id]
	doc.OCRText = &text
	doc.OCRConfidence = &confidence
	doc.OCRSeconds = &seconds
	return nil
}

func (m *memDocs) SaveExtraction(_ context.Context, id uuid.UUID, docType string, data json.RawMessage, model string, seconds float64) error {
	doc := m.docs[id]
	doc.DocumentType = &docType
	doc.ExtractedData = data
	doc.LLMModel = &model
	doc.LLMSeconds = &seconds
	return nil
}

func (m *memDocs) ClearResults(_ context.Context, id uuid.UUID) error {
	doc := m.docs[id]
	doc.OCRText, doc.OCRConfidence, doc.OCRSeconds = nil, nil, nil
	doc.DocumentType, doc.ExtractedData, doc.LLMModel, doc.LLMSeconds = nil, nil, nil, nil
	doc.ProcessedAt = nil
	return nil
}

func (m *memDocs) ListCompleted(_ context.Context, _ repository.ListFilter) ([]*entity.Document, error) {
	return nil, nil
}

func (m *memDocs) ListActive(_ context.Context) ([]*entity.Document, error) { return nil, nil }

func (m *memDocs) Archive(_ context.Context, id uuid.UUID) error {
	doc, ok := m.docs[id]
	if !ok {
		return common.ErrNotFound
	}
	doc.IsArchived = true
	return nil
}

// failingSaveDocs fails extraction persistence on top of memDocs.
type failingSaveDocs struct {
	*memDocs
	saveErr error
}

func (f *failingSaveDocs) SaveExtraction(_ context.Context, _ uuid.UUID, _ string, _ json.RawMessage, _ string, _ float64) error {
	return f.saveErr
}

type stubOCR struct {
	result ocr.Result
	calls  int
}

func (s *stubOCR) Extract(_ context.Context, _ string) ocr.Result {
	s.calls++
	return s.result
}

type stubFields struct {
	doc   entity.ExtractedDocument
	calls int
}

func (s *stubFields) ExtractWithRetry(_ context.Context, _, _ string) (entity.ExtractedDocument, time.Duration) {
	s.calls++
	return s.doc, 40 * time.Millisecond
}

func (s *stubFields) ModelName() string { return "stub-model" }

func newTestProcessor(t *testing.T, ocrx TextRecognizer, fields FieldExtractor) (*Processor, *memDocs) {
	t.Helper()
	docs := newMemDocs()
	storage := common.StorageConfig{UploadsDir: t.TempDir()}
	ocrCfg := common.OCRConfig{MaxFileSizeMB: 50, Extensions: constants.DefaultExtensions}
	return NewProcessor(docs, ocrx, fields, storage, ocrCfg, nil), docs
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("scanned bytes"), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	p, _ := newTestProcessor(t, &stubOCR{}, &stubFields{})

	err := p.ValidateFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, common.ErrFileMissing)

	err = p.ValidateFile(writeSource(t, "notes.txt"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	big := writeSource(t, "big.pdf")
	p.MaxBytes = 4
	err = p.ValidateFile(big)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)
}

func TestIngestCopiesWithTimestampPrefix(t *testing.T) {
	p, docs := newTestProcessor(t, &stubOCR{}, &stubFields{})
	src := writeSource(t, "invoice.pdf")

	doc, err := p.Ingest(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "invoice.pdf", doc.OriginalFilename)
	assert.True(t, strings.HasSuffix(doc.Filename, "_invoice.pdf"))
	assert.NotEqual(t, "invoice.pdf", doc.Filename)
	assert.Equal(t, constants.StatusPending, doc.Status)
	assert.FileExists(t, doc.FilePath)
	assert.Len(t, docs.docs, 1)
}

func TestProcessDocumentHappyPath(t *testing.T) {
	ext := entity.NewExtractedDocument("invoice")
	ocrx := &stubOCR{result: ocr.Result{Text: "INVOICE #42", Confidence: 0.92, Pages: 1}}
	fields := &stubFields{doc: ext}
	p, docs := newTestProcessor(t, ocrx, fields)

	doc, err := p.Ingest(context.Background(), writeSource(t, "inv.pdf"))
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(context.Background(), doc.ID))

	stored := docs.docs[doc.ID]
	assert.Equal(t, constants.StatusCompleted, stored.Status)
	require.NotNil(t, stored.ProcessedAt)
	require.NotNil(t, stored.OCRText)
	assert.Equal(t, "INVOICE #42", *stored.OCRText)
	require.NotNil(t, stored.DocumentType)
	assert.Equal(t, "invoice", *stored.DocumentType)
	assert.Equal(t, 1, fields.calls)
}

func TestProcessDocumentEmptyOCRFailsWithoutLLM(t *testing.T) {
	ocrx := &stubOCR{result: ocr.Result{Text: "   \n ", Confidence: 0.4}}
	fields := &stubFields{}
	p, docs := newTestProcessor(t, ocrx, fields)

	doc, err := p.Ingest(context.Background(), writeSource(t, "blank.png"))
	require.NoError(t, err)
	err = p.ProcessDocument(context.Background(), doc.ID)
	require.Error(t, err)

	assert.Equal(t, constants.StatusFailed, docs.docs[doc.ID].Status)
	assert.Zero(t, fields.calls)
}

func TestProcessDocumentOCRErrorFails(t *testing.T) {
	ocrx := &stubOCR{result: ocr.Result{Err: "file not found"}}
	p, docs := newTestProcessor(t, ocrx, &stubFields{})

	doc, err := p.Ingest(context.Background(), writeSource(t, "gone.png"))
	require.NoError(t, err)
	require.Error(t, p.ProcessDocument(context.Background(), doc.ID))
	assert.Equal(t, constants.StatusFailed, docs.docs[doc.ID].Status)
}

func TestProcessDocumentUnknownResultStillCompletes(t *testing.T) {
	ocrx := &stubOCR{result: ocr.Result{Text: "illegible", Confidence: 0.2}}
	fields := &stubFields{doc: entity.NewExtractedDocument("unknown")}
	p, docs := newTestProcessor(t, ocrx, fields)

	doc, err := p.Ingest(context.Background(), writeSource(t, "odd.png"))
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(context.Background(), doc.ID))

	stored := docs.docs[doc.ID]
	assert.Equal(t, constants.StatusCompleted, stored.Status)
	assert.Equal(t, "unknown", *stored.DocumentType)
}

func TestProcessDocumentStorageErrorMarksFailed(t *testing.T) {
	docs := newMemDocs()
	failing := &failingSaveDocs{memDocs: docs, saveErr: errors.New("disk full")}
	ocrx := &stubOCR{result: ocr.Result{Text: "INVOICE #42", Confidence: 0.9}}
	p := NewProcessor(failing, ocrx, &stubFields{doc: entity.NewExtractedDocument("invoice")},
		common.StorageConfig{UploadsDir: t.TempDir()},
		common.OCRConfig{MaxFileSizeMB: 50, Extensions: constants.DefaultExtensions}, nil)

	doc, err := p.Ingest(context.Background(), writeSource(t, "inv.pdf"))
	require.NoError(t, err)

	err = p.ProcessDocument(context.Background(), doc.ID)
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, constants.StatusFailed, docs.docs[doc.ID].Status)
}

func TestProcessBatchContinuesPastFailures(t *testing.T) {
	ocrx := &stubOCR{result: ocr.Result{Text: "ok", Confidence: 0.9}}
	p, _ := newTestProcessor(t, ocrx, &stubFields{doc: entity.NewExtractedDocument("receipt")})

	good := writeSource(t, "good.pdf")
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	res := p.ProcessBatch(context.Background(), []string{missing, good})
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, []string{missing}, res.Failed)
}

func TestReprocessClearsAndReruns(t *testing.T) {
	ocrx := &stubOCR{result: ocr.Result{Text: "fresh text", Confidence: 0.8}}
	fields := &stubFields{doc: entity.NewExtractedDocument("invoice")}
	p, docs := newTestProcessor(t, ocrx, fields)

	doc, err := p.Ingest(context.Background(), writeSource(t, "redo.pdf"))
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(context.Background(), doc.ID))
	require.NoError(t, p.Reprocess(context.Background(), doc.ID))

	assert.Equal(t, 2, ocrx.calls)
	assert.Equal(t, 2, fields.calls)
	assert.Equal(t, constants.StatusCompleted, docs.docs[doc.ID].Status)
}

func TestArchiveRemovesStoredFile(t *testing.T) {
	p, docs := newTestProcessor(t, &stubOCR{}, &stubFields{})

	doc, err := p.Ingest(context.Background(), writeSource(t, "old.pdf"))
	require.NoError(t, err)
	require.FileExists(t, doc.FilePath)

	require.NoError(t, p.Archive(context.Background(), doc.ID))
	assert.True(t, docs.docs[doc.ID].IsArchived)
	assert.NoFileExists(t, doc.FilePath)
}

func TestReprocessUnknownDocument(t *testing.T) {
	p, _ := newTestProcessor(t, &stubOCR{}, &stubFields{})
	err := p.Reprocess(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
