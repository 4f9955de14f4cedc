package constants

import (
	"strings"
)

// DocumentType is the closed vocabulary for extracted document classification.
type DocumentType string

const (
	Invoice       DocumentType = "invoice"
	Receipt       DocumentType = "receipt"
	Quote         DocumentType = "quote"
	Estimate      DocumentType = "estimate"
	PurchaseOrder DocumentType = "purchase_order"
	DeliveryNote  DocumentType = "delivery_note"
	CreditNote    DocumentType = "credit_note"
	Statement     DocumentType = "statement"
	Contract      DocumentType = "contract"
	Lease         DocumentType = "lease"
	Bill          DocumentType = "bill"
	Unknown       DocumentType = "unknown"
)

var allDocumentTypes = []DocumentType{
	Invoice,
	Receipt,
	Quote,
	Estimate,
	PurchaseOrder,
	DeliveryNote,
	CreditNote,
	Statement,
	Contract,
	Lease,
	Bill,
	Unknown,
}

func DocumentTypes() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// CanonicalizeDocumentType lowercases and matches against the vocabulary.
// Anything outside the vocabulary coerces to Unknown.
func CanonicalizeDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Unknown, false
	}
	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return Unknown, false
}
