package constants

// DocumentStatus is the canonical lifecycle status for rows in documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    DocumentStatus = "pending"    // accepted, not yet started
	StatusProcessing DocumentStatus = "processing" // pipeline in progress
	StatusCompleted  DocumentStatus = "completed"  // OCR text present, extraction done or skipped
	StatusFailed     DocumentStatus = "failed"     // terminal failure
)
