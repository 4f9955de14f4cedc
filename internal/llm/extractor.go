package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docuvault/constants"
	"github.com/joseph-ayodele/docuvault/internal/entity"
)

// Extractor converts OCR text into a validated ExtractedDocument through
// the Generator boundary.
type Extractor struct {
	gen        Generator
	maxRetries int
	logger     *slog.Logger
}

// NewExtractor wires a Generator with a retry bound (default 2 retries,
// i.e. at most 3 attempts).
func NewExtractor(gen Generator, maxRetries int, logger *slog.Logger) *Extractor {
	if maxRetries < 0 {
		maxRetries = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, maxRetries: maxRetries, logger: logger}
}

// ModelName reports the underlying generator's model.
func (e *Extractor) ModelName() string { return e.gen.Model() }

// Extract runs one extraction attempt: prompt, generate, locate JSON,
// normalize, validate, decode. The error return carries call and
// validation failures; callers wanting the degrade-to-unknown behavior
// use ExtractWithRetry.
func (e *Extractor) Extract(ctx context.Context, ocrText, typeHint string) (entity.ExtractedDocument, time.Duration, error) {
	start := time.Now()

	prompt := BuildExtractionPrompt(ocrText, typeHint)
	response, err := e.gen.Generate(ctx, ExtractionSystemPrompt, prompt)
	if err != nil {
		return entity.NewExtractedDocument(string(constants.Unknown)), time.Since(start), fmt.Errorf("generate: %w", err)
	}

	raw, err := ExtractJSON(response)
	if err != nil {
		return entity.NewExtractedDocument(string(constants.Unknown)), time.Since(start), err
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return entity.NewExtractedDocument(string(constants.Unknown)), time.Since(start), fmt.Errorf("decode model json: %w", err)
	}
	m = Normalize(m)

	repaired, err := json.Marshal(m)
	if err != nil {
		return entity.NewExtractedDocument(string(constants.Unknown)), time.Since(start), err
	}
	if err := ValidateJSONAgainstSchema(BuildDocumentJSONSchema(), repaired); err != nil {
		return entity.NewExtractedDocument(string(constants.Unknown)), time.Since(start), err
	}

	var doc entity.ExtractedDocument
	if err := json.Unmarshal(repaired, &doc); err != nil {
		return entity.NewExtractedDocument(string(constants.Unknown)), time.Since(start), fmt.Errorf("unmarshal document: %w", err)
	}
	doc.EnsureDefaults()

	elapsed := time.Since(start)
	e.logger.Info("llm.extract.ok",
		"document_type", doc.DocumentType,
		"items", len(doc.Items),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return doc, elapsed, nil
}

// ExtractWithRetry repeats Extract until the document classifies as
// something other than unknown or attempts run out. Failures are logged
// and retried; the fallback is a minimal unknown document. This method
// never returns an error: extraction cannot fail a document, only
// degrade it.
func (e *Extractor) ExtractWithRetry(ctx context.Context, ocrText, typeHint string) (entity.ExtractedDocument, time.Duration) {
	var total time.Duration
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		doc, elapsed, err := e.Extract(ctx, ocrText, typeHint)
		total += elapsed

		if err != nil {
			lastErr = err
			if attempt < e.maxRetries {
				e.logger.Warn("llm.extract.retry", "attempt", attempt+1, "error", err)
			}
			continue
		}

		// Success is classification alone: a correctly-typed document
		// with empty items still counts. Known weak point, kept as is.
		if doc.DocumentType != string(constants.Unknown) {
			return doc, total
		}
		if attempt < e.maxRetries {
			e.logger.Warn("llm.extract.retry", "attempt", attempt+1, "reason", "document_type unknown")
		}
	}

	e.logger.Error("llm.extract.exhausted", "attempts", e.maxRetries+1, "last_error", lastErr)
	return entity.NewExtractedDocument(string(constants.Unknown)), total
}
