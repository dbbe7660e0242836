package domain

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product line in an order. Immutable once the order is assembled.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ShippingLocation is a saved delivery address selected from the user's
// pre-existing collection. The workflow holds it by reference and never
// mutates it. The backend names the contact field cp_no on the wire.
type ShippingLocation struct {
	ID            string `json:"id"`
	Address       string `json:"address"`
	ContactNumber string `json:"cp_no"`
}

// ProofImage is a captured payment-proof image
type ProofImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OrderAssembly is the in-progress order. Created when the user enters the
// flow with a pre-selected item set, mutated as payment method, proof and
// reference code are resolved, and discarded on successful submission.
type OrderAssembly struct {
	UserID           string
	Items            []LineItem
	Total            decimal.Decimal
	PaymentMethod    PaymentMethod
	Location         *ShippingLocation
	IsInitialPayment bool
	ReferenceCode    string
	Proof            *ProofImage
}

// ExtractionResult is the tagged outcome of an OCR extraction attempt
type ExtractionResult struct {
	Status ExtractionStatus
	Code   string
	Reason string
}

// Detected builds an ExtractionResult carrying a detected reference code
func Detected(code string) ExtractionResult {
	return ExtractionResult{Status: ExtractionDetected, Code: code}
}

// NotDetected builds an ExtractionResult for a processed image with no reference found
func NotDetected() ExtractionResult {
	return ExtractionResult{Status: ExtractionNotDetected}
}

// ExtractionFailure builds an ExtractionResult for a failed extraction call
func ExtractionFailure(reason string) ExtractionResult {
	return ExtractionResult{Status: ExtractionFailed, Reason: reason}
}
