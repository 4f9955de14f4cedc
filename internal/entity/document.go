package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docuvault/constants"
)

// Document represents one processed or in-flight file for data transfer
// between layers.
type Document struct {
	ID               uuid.UUID                `json:"id"`
	Filename         string                   `json:"filename"`
	OriginalFilename string                   `json:"original_filename"`
	FilePath         string                   `json:"file_path"`
	FileSize         int64                    `json:"file_size"`
	FileType         string                   `json:"file_type"`
	Status           constants.DocumentStatus `json:"status"`
	UploadedAt       time.Time                `json:"uploaded_at"`
	ProcessedAt      *time.Time               `json:"processed_at,omitempty"`

	// OCR results
	OCRText       *string  `json:"ocr_text,omitempty"`
	OCRConfidence *float32 `json:"ocr_confidence,omitempty"`
	OCRSeconds    *float64 `json:"ocr_seconds,omitempty"`

	// Extraction results
	DocumentType  *string         `json:"document_type,omitempty"`
	ExtractedData json.RawMessage `json:"extracted_data,omitempty"`
	LLMModel      *string         `json:"llm_model,omitempty"`
	LLMSeconds    *float64        `json:"llm_seconds,omitempty"`

	// Metadata
	Tags       json.RawMessage `json:"tags,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
	IsArchived bool            `json:"is_archived"`
}

// SearchHistory is one answered query: append-only except for explicit
// user-initiated deletion. DocumentIDs is a non-enforced reference so
// answers stay readable after the documents are archived or deleted.
type SearchHistory struct {
	ID            uuid.UUID   `json:"id"`
	Query         string      `json:"query"`
	Response      string      `json:"response"`
	DocumentIDs   []uuid.UUID `json:"document_ids"`
	CreatedAt     time.Time   `json:"created_at"`
	ExecutionTime float64     `json:"execution_time"`
}
