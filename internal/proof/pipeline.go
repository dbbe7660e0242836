// Package proof resolves a verified payment-reference code from a captured
// image, with manual entry as the guaranteed fallback path.
package proof

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/pkg/errors"
)

const (
	refCodeMinLen = 8
	refCodeMaxLen = 20
)

// Scanner extracts a reference code from a payment-proof image.
// Implemented by the store backend client (remote OCR endpoint).
type Scanner interface {
	ExtractReference(ctx context.Context, image *domain.ProofImage) (domain.ExtractionResult, error)
}

// Pipeline is the payment-proof state machine for one upload attempt:
// IDLE -> IMAGE_CAPTURED -> SCANNING -> {RESOLVED, NEEDS_MANUAL_ENTRY} -> RESOLVED
//
// Concurrent HTTP requests can address the same attempt ID, so every method
// takes the mutex; the lock is held across the extraction call, which keeps
// a manual code from being recorded while a scan is in flight.
type Pipeline struct {
	scanner Scanner
	logger  *zap.Logger

	mu    sync.Mutex
	state domain.ProofState
	image *domain.ProofImage
	code  string
}

// NewPipeline creates an idle pipeline
func NewPipeline(scanner Scanner, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		scanner: scanner,
		logger:  logger,
		state:   domain.ProofStateIdle,
	}
}

// State returns the current pipeline state
func (p *Pipeline) State() domain.ProofState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Image returns the captured image, or nil before capture
func (p *Pipeline) Image() *domain.ProofImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.image
}

// ReferenceCode returns the resolved code, empty until RESOLVED
func (p *Pipeline) ReferenceCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

// Capture attaches a payment-proof image. Valid from IDLE, or from RESOLVED
// when the user replaces a previous proof; any recorded code is discarded.
// Scanning does not start here: the caller must confirm the image first.
func (p *Pipeline) Capture(image *domain.ProofImage) error {
	if image == nil || len(image.Data) == 0 {
		return &errors.ErrValidation{Message: "payment proof image is required"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.CanTransitionTo(domain.ProofStateImageCaptured) {
		return &errors.ErrInvalidStateTransition{From: p.state, To: domain.ProofStateImageCaptured}
	}
	p.image = image
	p.code = ""
	p.state = domain.ProofStateImageCaptured
	return nil
}

// ConfirmAndScan runs OCR extraction on the confirmed image. A detected code
// resolves the pipeline; anything else, including transport and parse
// failures, degrades to NEEDS_MANUAL_ENTRY. Extraction never fails the
// attempt outright - manual entry is always reachable.
func (p *Pipeline) ConfirmAndScan(ctx context.Context) (domain.ExtractionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.CanTransitionTo(domain.ProofStateScanning) {
		return domain.ExtractionResult{}, &errors.ErrInvalidStateTransition{From: p.state, To: domain.ProofStateScanning}
	}
	p.state = domain.ProofStateScanning

	result, err := p.scanner.ExtractReference(ctx, p.image)
	if err != nil {
		p.logger.Warn("reference extraction failed, falling back to manual entry", zap.Error(err))
		result = domain.ExtractionFailure(err.Error())
	}

	switch result.Status {
	case domain.ExtractionDetected:
		p.code = result.Code
		p.state = domain.ProofStateResolved
		p.logger.Info("reference code detected", zap.Int("code_length", len(result.Code)))
	default:
		p.state = domain.ProofStateNeedsManualEntry
	}
	return result, nil
}

// SubmitManualCode records a typed reference code. Valid only from
// NEEDS_MANUAL_ENTRY; a validation failure keeps the state unchanged.
func (p *Pipeline) SubmitManualCode(code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != domain.ProofStateNeedsManualEntry {
		return &errors.ErrInvalidStateTransition{From: p.state, To: domain.ProofStateResolved}
	}
	trimmed := strings.TrimSpace(code)
	if err := ValidateReferenceCode(trimmed); err != nil {
		return err
	}
	p.code = trimmed
	p.state = domain.ProofStateResolved
	p.logger.Info("reference code entered manually", zap.Int("code_length", len(trimmed)))
	return nil
}

// Reset discards the image and code and returns to IDLE. Used when the user
// changes or cancels the attachment; allowed from any state.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.image = nil
	p.code = ""
	p.state = domain.ProofStateIdle
}

// ValidateReferenceCode checks a GCash reference code: non-empty after
// trimming and between 8 and 20 characters.
func ValidateReferenceCode(code string) error {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return &errors.ErrValidation{Message: "please enter a reference number"}
	}
	if len(trimmed) < refCodeMinLen || len(trimmed) > refCodeMaxLen {
		return &errors.ErrValidation{Message: "reference number should be between 8-20 characters"}
	}
	return nil
}
