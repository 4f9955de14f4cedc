package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docuvault/constants"
	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/entity"
)

// ListFilter narrows ListCompleted: optional type filter and a cap on
// how many of the most recently processed documents come back.
type ListFilter struct {
	DocumentType string
	Limit        int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, processedAt *time.Time) error
	SaveOCRResult(ctx context.Context, id uuid.UUID, text string, confidence float32, seconds float64) error
	SaveExtraction(ctx context.Context, id uuid.UUID, docType string, data json.RawMessage, model string, seconds float64) error
	ClearResults(ctx context.Context, id uuid.UUID) error
	ListCompleted(ctx context.Context, filter ListFilter) ([]*entity.Document, error)
	ListActive(ctx context.Context) ([]*entity.Document, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	store  *Store
	logger *slog.Logger
}

func NewDocumentRepository(store *Store, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{store: store, logger: logger}
}

const documentColumns = `id, filename, original_filename, file_path, file_size, file_type,
	status, uploaded_at, processed_at, ocr_text, ocr_confidence, ocr_seconds,
	document_type, extracted_data, llm_model, llm_seconds, tags, notes, is_archived`

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = constants.StatusPending
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, original_filename, file_path, file_size, file_type, status, uploaded_at, is_archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		doc.ID.String(), doc.Filename, doc.OriginalFilename, doc.FilePath,
		doc.FileSize, doc.FileType, string(doc.Status), doc.UploadedAt,
	)
	if err != nil {
		r.logger.Error("documents.create_failed", "id", doc.ID, "error", err)
		return common.WrapError(err, "create document")
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id.String())
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return doc, err
}

func (r *documentRepository) SetStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, processedAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, processed_at = COALESCE(?, processed_at) WHERE id = ?`,
		string(status), processedAt, id.String())
	if err != nil {
		r.logger.Error("documents.set_status_failed", "id", id, "status", status, "error", err)
		return common.WrapError(err, "set status")
	}
	return nil
}

// SaveOCRResult persists the OCR stage immediately so a later extraction
// failure cannot lose recognized text.
func (r *documentRepository) SaveOCRResult(ctx context.Context, id uuid.UUID, text string, confidence float32, seconds float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx,
		`UPDATE documents SET ocr_text = ?, ocr_confidence = ?, ocr_seconds = ? WHERE id = ?`,
		text, confidence, seconds, id.String())
	if err != nil {
		r.logger.Error("documents.save_ocr_failed", "id", id, "error", err)
		return common.WrapError(err, "save ocr result")
	}
	return nil
}

func (r *documentRepository) SaveExtraction(ctx context.Context, id uuid.UUID, docType string, data json.RawMessage, model string, seconds float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx,
		`UPDATE documents SET document_type = ?, extracted_data = ?, llm_model = ?, llm_seconds = ? WHERE id = ?`,
		docType, string(data), model, seconds, id.String())
	if err != nil {
		r.logger.Error("documents.save_extraction_failed", "id", id, "error", err)
		return common.WrapError(err, "save extraction")
	}
	return nil
}

// ClearResults wipes OCR and extraction fields ahead of a reprocess run.
func (r *documentRepository) ClearResults(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx, `
		UPDATE documents
		SET ocr_text = NULL, ocr_confidence = NULL, ocr_seconds = NULL,
		    document_type = NULL, extracted_data = NULL, llm_model = NULL, llm_seconds = NULL,
		    processed_at = NULL
		WHERE id = ?`, id.String())
	if err != nil {
		return common.WrapError(err, "clear results")
	}
	return nil
}

func (r *documentRepository) ListCompleted(ctx context.Context, filter ListFilter) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE status = ? AND is_archived = 0`
	args := []any{string(constants.StatusCompleted)}
	if filter.DocumentType != "" {
		query += ` AND document_type = ?`
		args = append(args, filter.DocumentType)
	}
	query += ` ORDER BY processed_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	return r.queryDocuments(ctx, query, args...)
}

func (r *documentRepository) ListActive(ctx context.Context) ([]*entity.Document, error) {
	return r.queryDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE is_archived = 0 ORDER BY uploaded_at DESC`)
}

// Archive is the soft delete: the row stays so history references keep
// resolving. Physical file removal is the caller's concern.
func (r *documentRepository) Archive(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE documents SET is_archived = 1 WHERE id = ?`, id.String())
	if err != nil {
		return common.WrapError(err, "archive document")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *documentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("documents.query_failed", "error", err)
		return nil, common.WrapError(err, "query documents")
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		doc        entity.Document
		idStr      string
		status     string
		extracted  sql.NullString
		tags       sql.NullString
		isArchived int
	)
	err := row.Scan(
		&idStr, &doc.Filename, &doc.OriginalFilename, &doc.FilePath,
		&doc.FileSize, &doc.FileType, &status, &doc.UploadedAt, &doc.ProcessedAt,
		&doc.OCRText, &doc.OCRConfidence, &doc.OCRSeconds,
		&doc.DocumentType, &extracted, &doc.LLMModel, &doc.LLMSeconds,
		&tags, &doc.Notes, &isArchived,
	)
	if err != nil {
		return nil, err
	}
	doc.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse document id: %w", err)
	}
	doc.Status = constants.DocumentStatus(status)
	if extracted.Valid && extracted.String != "" {
		doc.ExtractedData = json.RawMessage(extracted.String)
	}
	if tags.Valid && tags.String != "" {
		doc.Tags = json.RawMessage(tags.String)
	}
	doc.IsArchived = isArchived != 0
	return &doc, nil
}
