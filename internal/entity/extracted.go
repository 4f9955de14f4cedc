package entity

import (
	"github.com/joseph-ayodele/docuvault/constants"
)

// Address information for a party.
type Address struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

// Party is vendor/customer information.
type Party struct {
	Name    *string  `json:"name"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Address *Address `json:"address"`
	TaxID   *string  `json:"tax_id"`
}

// LineItem is one line in an invoice/receipt. Monetary values stay as
// strings so the source formatting and precision survive round-trips.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *string  `json:"unit_price"`
	Amount      *string  `json:"amount"`
	Tax         *string  `json:"tax"`
	Discount    *string  `json:"discount"`
}

// Amounts collects document-level financial totals.
type Amounts struct {
	Subtotal *string `json:"subtotal"`
	Tax      *string `json:"tax"`
	Discount *string `json:"discount"`
	Shipping *string `json:"shipping"`
	Total    *string `json:"total"`
	Currency string  `json:"currency"`
	Paid     *string `json:"paid"`
	Due      *string `json:"due"`
}

// Dates collects document dates as YYYY-MM-DD strings.
type Dates struct {
	IssueDate    *string `json:"issue_date"`
	DueDate      *string `json:"due_date"`
	DeliveryDate *string `json:"delivery_date"`
	PaymentDate  *string `json:"payment_date"`
}

// PaymentInfo holds payment identifiers.
type PaymentInfo struct {
	Method        *string `json:"method"` // cash, card, transfer, etc.
	CardLastFour  *string `json:"card_last_four"`
	TransactionID *string `json:"transaction_id"`
	BankAccount   *string `json:"bank_account"`
}

// ExtractedDocument is the structured record produced by LLM extraction.
// Every key serializes explicitly (null for unknown optionals, never
// omitted), and container fields are value types so they are always
// present as objects/arrays.
type ExtractedDocument struct {
	DocumentType string `json:"document_type"`

	DocumentNumber  *string `json:"document_number"`
	ReferenceNumber *string `json:"reference_number"`
	PONumber        *string `json:"po_number"`

	Dates Dates `json:"dates"`

	Vendor   Party `json:"vendor"`
	Customer Party `json:"customer"`

	Items []LineItem `json:"items"`

	Amounts Amounts `json:"amounts"`

	Payment PaymentInfo `json:"payment"`

	Notes *string `json:"notes"`
	Terms *string `json:"terms"`

	ConfidenceScore *float32 `json:"confidence_score"`
}

// NewExtractedDocument returns a fully-defaulted document of the given type.
// Unrecognized types coerce to unknown.
func NewExtractedDocument(docType string) ExtractedDocument {
	canon, _ := constants.CanonicalizeDocumentType(docType)
	return ExtractedDocument{
		DocumentType: string(canon),
		Items:        []LineItem{},
		Amounts:      Amounts{Currency: "USD"},
	}
}

// EnsureDefaults repairs a decoded document so the container invariants
// hold: canonical document type, non-nil items, currency fallback.
func (d *ExtractedDocument) EnsureDefaults() {
	canon, _ := constants.CanonicalizeDocumentType(d.DocumentType)
	d.DocumentType = string(canon)
	if d.Items == nil {
		d.Items = []LineItem{}
	}
	if d.Amounts.Currency == "" {
		d.Amounts.Currency = "USD"
	}
}
