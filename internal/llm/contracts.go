package llm

import "context"

// FieldConfidence is the per-field confidence triple reported by the model.
// Values are "high" | "medium" | "low".
type FieldConfidence struct {
	Customer string `json:"customer"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

// BillFields is the normalized shape we want from the LLM.
type BillFields struct {
	CustomerName string          `json:"customer_name"`
	Amount       string          `json:"amount"`      // decimal, GST-inclusive, no currency symbols
	Date         string          `json:"date"`        // YYYY-MM-DD
	BillNumber   string          `json:"bill_number"` // invoice/bill number
	VendorName   string          `json:"vendor_name"` // issuing company, NOT the receiver
	Confidence   FieldConfidence `json:"confidence"`
}

// ExtractRequest carries the already-masked text and extraction hints.
// MaskedText must never be raw: masking happens before this package is ever
// reached.
type ExtractRequest struct {
	MaskedText       string
	KnownVendorNames []string // hints only, never constraints
}

// FieldExtractor is the interface the capture workflow depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (BillFields, error)
}
