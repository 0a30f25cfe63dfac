// Package verify checks that a receipt is bound to a device and application.
//
// The verification process validates:
//   - the receipt envelope and payload decode cleanly
//   - the BundleID, Opaque and Hash attributes are present
//   - SHA-1(device || Opaque || BundleID) equals the Hash attribute
//
// # Verification Flow
//
// Build a service with the default collaborators and validate one receipt:
//
//	service := verify.NewService(logger)
//	result, err := service.Validate(ctx, envelopeBytes, "438498A7-4850-41DB-BCBE-4E1756378E39")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if result.Outcome != verify.OutcomeValid {
//		log.Printf("receipt rejected: %s", result.Reason)
//	}
//
// # Outcomes
//
// Engine.Verify is a pure function of its inputs and returns one of:
//   - OutcomeValid: the recomputed digest matches the Hash attribute
//   - OutcomeInvalid: the digests differ, or Hash is not 20 bytes long
//   - OutcomeMalformed: a required attribute is absent
//
// # Timing
//
// By default the digest comparison stops at the first differing byte. That
// is fine for a local command-line check of a receipt the caller already
// holds. Set Engine.ConstantTime (or WithConstantTimeCompare) before using
// the engine anywhere an attacker can submit receipts and measure replies.
package verify

import (
	"github.com/google/uuid"

	"github.com/anchorageoss/checkreceipt/receipt"
)

// Outcome is the verdict of one verification.
type Outcome int

const (
	OutcomeMalformed Outcome = iota
	OutcomeInvalid
	OutcomeValid
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "Valid"
	case OutcomeInvalid:
		return "Invalid"
	default:
		return "Malformed"
	}
}

// Status returns the numeric status reported to structured callers.
func (o Outcome) Status() int {
	if o == OutcomeValid {
		return 1
	}
	return 0
}

// StatusString returns the human readable verdict.
func (o Outcome) StatusString() string {
	if o == OutcomeValid {
		return "Passed"
	}
	return "Failed"
}

// ValidateResult describes one receipt validation.
type ValidateResult struct {
	Outcome    Outcome
	Reason     string
	Device     uuid.UUID
	Attributes receipt.AttributeSet
	Computed   []byte
}

// StructuredResponse is the JSON body for a completed verification.
type StructuredResponse struct {
	Status       int    `json:"status"`
	StatusString string `json:"status_string"`
}

// ErrorResponse is the JSON body when input could not be decoded.
type ErrorResponse struct {
	Error string `json:"error"`
}
