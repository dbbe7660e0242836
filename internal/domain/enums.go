package domain

// PaymentMethod is the payment option selected for an order
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "Cash"
	PaymentMethodGCash PaymentMethod = "GCash"
)

// IsValid checks if the payment method is one the backend accepts
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodGCash:
		return true
	default:
		return false
	}
}

// OrderClass is the policy classification of an order total
type OrderClass string

const (
	// BELOW_MINIMUM - total under the minimum order amount, submission blocked
	OrderClassBelowMinimum OrderClass = "BELOW_MINIMUM"
	// NORMAL - full payment allowed
	OrderClassNormal OrderClass = "NORMAL"
	// REQUIRES_INITIAL_PAYMENT - total over the ceiling, only a 30% upfront submission is allowed
	OrderClassRequiresInitialPayment OrderClass = "REQUIRES_INITIAL_PAYMENT"
)

// ProofState is the state of a payment-proof attempt
type ProofState string

const (
	// IDLE - no image attached yet
	ProofStateIdle ProofState = "IDLE"
	// IMAGE_CAPTURED - image attached, waiting for user confirmation before scanning
	ProofStateImageCaptured ProofState = "IMAGE_CAPTURED"
	// SCANNING - OCR extraction in flight
	ProofStateScanning ProofState = "SCANNING"
	// NEEDS_MANUAL_ENTRY - extraction found nothing, waiting for a typed reference code
	ProofStateNeedsManualEntry ProofState = "NEEDS_MANUAL_ENTRY"
	// RESOLVED - a reference code has been recorded
	ProofStateResolved ProofState = "RESOLVED"
)

// IsValid checks if the proof state is valid
func (s ProofState) IsValid() bool {
	switch s {
	case ProofStateIdle,
		ProofStateImageCaptured,
		ProofStateScanning,
		ProofStateNeedsManualEntry,
		ProofStateResolved:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a proof state transition is valid.
// Reset (any state back to IDLE) is always allowed and not listed here.
func (s ProofState) CanTransitionTo(newState ProofState) bool {
	switch s {
	case ProofStateIdle:
		return newState == ProofStateImageCaptured
	case ProofStateImageCaptured:
		return newState == ProofStateScanning
	case ProofStateScanning:
		return newState == ProofStateResolved ||
			newState == ProofStateNeedsManualEntry
	case ProofStateNeedsManualEntry:
		return newState == ProofStateResolved
	case ProofStateResolved:
		// A new image may replace a resolved attempt
		return newState == ProofStateImageCaptured
	default:
		return false
	}
}

// Destination is the post-submission screen the client should navigate to,
// chosen by the backend's response discriminator.
type Destination string

const (
	DestinationToConfirm Destination = "to-confirm"
	DestinationToPay     Destination = "to-pay"
)

// ExtractionStatus tags an ExtractionResult variant
type ExtractionStatus string

const (
	// DETECTED - the OCR endpoint returned a reference code
	ExtractionDetected ExtractionStatus = "DETECTED"
	// NOT_DETECTED - the image was processed but no reference was found
	ExtractionNotDetected ExtractionStatus = "NOT_DETECTED"
	// FAILED - the extraction call itself failed (network, parse, server error)
	ExtractionFailed ExtractionStatus = "FAILED"
)
