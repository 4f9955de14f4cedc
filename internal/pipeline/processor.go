package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docuvault/constants"
	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/entity"
	"github.com/joseph-ayodele/docuvault/internal/ocr"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

// TextRecognizer is the OCR stage boundary.
type TextRecognizer interface {
	Extract(ctx context.Context, path string) ocr.Result
}

// FieldExtractor is the LLM stage boundary.
type FieldExtractor interface {
	ExtractWithRetry(ctx context.Context, ocrText, typeHint string) (entity.ExtractedDocument, time.Duration)
	ModelName() string
}

// Processor coordinates intake, OCR, and LLM extraction for one document
// at a time. Batch runs are strictly sequential.
type Processor struct {
	Docs       repository.DocumentRepository
	OCR        TextRecognizer
	Fields     FieldExtractor
	UploadsDir string
	MaxBytes   int64
	Extensions map[string]bool
	Logger     *slog.Logger
}

func NewProcessor(docs repository.DocumentRepository, ocrx TextRecognizer, fields FieldExtractor, cfg common.StorageConfig, ocrCfg common.OCRConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(ocrCfg.Extensions))
	for _, e := range ocrCfg.Extensions {
		exts[constants.NormalizeExt(e)] = true
	}
	return &Processor{
		Docs:       docs,
		OCR:        ocrx,
		Fields:     fields,
		UploadsDir: cfg.UploadsDir,
		MaxBytes:   int64(ocrCfg.MaxFileSizeMB) * 1024 * 1024,
		Extensions: exts,
		Logger:     logger,
	}
}

// ValidateFile rejects a path before any state is created for it.
func (p *Processor) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, common.ErrFileMissing)
	}
	if p.MaxBytes > 0 && info.Size() > p.MaxBytes {
		return fmt.Errorf("%s (%d bytes): %w", path, info.Size(), common.ErrFileTooLarge)
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !p.Extensions[ext] {
		return fmt.Errorf("%s: %w", ext, common.ErrUnsupportedFormat)
	}
	return nil
}

// Ingest validates a source file, copies it into the uploads directory
// under a timestamped name, and registers a pending document row.
func (p *Processor) Ingest(ctx context.Context, path string) (*entity.Document, error) {
	if err := p.ValidateFile(path); err != nil {
		return nil, err
	}

	stored, size, err := p.saveFile(path)
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		Filename:         filepath.Base(stored),
		OriginalFilename: filepath.Base(path),
		FilePath:         stored,
		FileSize:         size,
		FileType:         constants.NormalizeExt(filepath.Ext(path)),
		Status:           constants.StatusPending,
	}
	if err := p.Docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	p.Logger.Info("pipeline.ingest.ok", "id", doc.ID, "filename", doc.OriginalFilename, "size", size)
	return doc, nil
}

func (p *Processor) saveFile(path string) (string, int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	name := time.Now().Format("20060102_150405") + "_" + filepath.Base(path)
	dest := filepath.Join(p.UploadsDir, name)
	dst, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return "", 0, fmt.Errorf("copy upload: %w", err)
	}
	return dest, n, nil
}

// ProcessDocument runs OCR then field extraction for a registered
// document. OCR failure or empty text is terminal (status failed).
// Extraction never fails the document: retry exhaustion degrades to an
// unknown-typed result and the document still completes.
func (p *Processor) ProcessDocument(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("pipeline.process.panic", "id", id, "panic", r)
			_ = p.Docs.SetStatus(ctx, id, constants.StatusFailed, nil)
			err = fmt.Errorf("processing panic: %v", r)
		}
	}()

	doc, err := p.Docs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := p.Docs.SetStatus(ctx, id, constants.StatusProcessing, nil); err != nil {
		return err
	}

	// Once the record enters processing, every error path must land it in
	// failed. The status write itself is best-effort.
	fail := func(cause error) error {
		_ = p.Docs.SetStatus(ctx, id, constants.StatusFailed, nil)
		return cause
	}

	res := p.OCR.Extract(ctx, doc.FilePath)
	if res.Err != "" {
		p.Logger.Error("pipeline.ocr.failed", "id", id, "error", res.Err)
		return fail(fmt.Errorf("ocr: %s", res.Err))
	}
	if strings.TrimSpace(res.Text) == "" {
		p.Logger.Warn("pipeline.ocr.empty", "id", id, "path", doc.FilePath)
		return fail(fmt.Errorf("ocr produced no text for %s", doc.FilePath))
	}

	// OCR output is persisted before extraction starts so a model outage
	// cannot lose recognized text.
	if err := p.Docs.SaveOCRResult(ctx, id, res.Text, res.Confidence, res.Duration.Seconds()); err != nil {
		return fail(err)
	}
	p.Logger.Info("pipeline.ocr.ok",
		"id", id,
		"pages", res.Pages,
		"confidence", res.Confidence,
		"preprocessed", res.Preprocessed,
	)

	extracted, llmDur := p.Fields.ExtractWithRetry(ctx, res.Text, "")
	data, err := json.Marshal(extracted)
	if err != nil {
		return fail(fmt.Errorf("marshal extraction: %w", err))
	}
	if err := p.Docs.SaveExtraction(ctx, id, extracted.DocumentType, data, p.Fields.ModelName(), llmDur.Seconds()); err != nil {
		return fail(err)
	}

	now := time.Now().UTC()
	if err := p.Docs.SetStatus(ctx, id, constants.StatusCompleted, &now); err != nil {
		return fail(err)
	}
	p.Logger.Info("pipeline.process.ok", "id", id, "document_type", extracted.DocumentType)
	return nil
}

// BatchResult summarizes a directory or multi-file run.
type BatchResult struct {
	Attempted int
	Succeeded int
	Failed    []string
}

// ProcessBatch ingests and processes each path in order. One document's
// failure is recorded and the run continues.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) BatchResult {
	var out BatchResult
	for _, path := range paths {
		out.Attempted++
		doc, err := p.Ingest(ctx, path)
		if err != nil {
			p.Logger.Error("pipeline.batch.ingest_failed", "path", path, "error", err)
			out.Failed = append(out.Failed, path)
			continue
		}
		if err := p.ProcessDocument(ctx, doc.ID); err != nil {
			out.Failed = append(out.Failed, path)
			continue
		}
		out.Succeeded++
	}
	p.Logger.Info("pipeline.batch.done", "attempted", out.Attempted, "succeeded", out.Succeeded)
	return out
}

// Archive soft-deletes a document and best-effort removes its stored
// upload. The row survives so history references keep resolving.
func (p *Processor) Archive(ctx context.Context, id uuid.UUID) error {
	doc, err := p.Docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.Docs.Archive(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		p.Logger.Warn("pipeline.archive.file_remove_failed", "id", id, "path", doc.FilePath, "error", err)
	}
	p.Logger.Info("pipeline.archive.ok", "id", id)
	return nil
}

// Reprocess clears prior OCR and extraction output and runs the
// document through the pipeline again from its stored upload.
func (p *Processor) Reprocess(ctx context.Context, id uuid.UUID) error {
	if _, err := p.Docs.GetByID(ctx, id); err != nil {
		return err
	}
	if err := p.Docs.ClearResults(ctx, id); err != nil {
		return err
	}
	p.Logger.Info("pipeline.reprocess.start", "id", id)
	return p.ProcessDocument(ctx, id)
}
