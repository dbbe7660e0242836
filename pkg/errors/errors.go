package errors

import (
	"fmt"

	"github.com/harvestlink/checkoutapi/internal/domain"
)

// BlockReason identifies which submission precondition failed
type BlockReason string

const (
	ReasonMissingPaymentMethod   BlockReason = "MISSING_PAYMENT_METHOD"
	ReasonMissingProof           BlockReason = "MISSING_PROOF"
	ReasonMissingReference       BlockReason = "MISSING_REFERENCE"
	ReasonMissingLocation        BlockReason = "MISSING_LOCATION"
	ReasonBelowMinimum           BlockReason = "BELOW_MINIMUM"
	ReasonInitialPaymentRequired BlockReason = "INITIAL_PAYMENT_REQUIRED"
)

// ErrSubmissionBlocked is returned when a place-request precondition fails.
// The order state is preserved so the user can fix the input and retry.
type ErrSubmissionBlocked struct {
	Reason  BlockReason
	Message string
}

func (e *ErrSubmissionBlocked) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Reason)
}

// ErrValidation is returned when client-side validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrNetwork is returned when a store backend call fails in transport.
// Transient; the in-progress order is kept so the user may retry.
type ErrNetwork struct {
	Op  string
	Err error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrServerRejection is returned when the store backend answers with a
// structured success=false response
type ErrServerRejection struct {
	Message string
}

func (e *ErrServerRejection) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request rejected by server"
}

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidStateTransition is returned when an invalid proof-state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.ProofState
	To   domain.ProofState
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
