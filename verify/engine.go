package verify

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/anchorageoss/checkreceipt/crypto"
	"github.com/anchorageoss/checkreceipt/receipt"
)

// requiredAttributes must all be present before a digest is computed.
var requiredAttributes = []receipt.AttributeType{
	receipt.TypeBundleID,
	receipt.TypeOpaque,
	receipt.TypeHash,
}

// Engine recomputes the binding digest and compares it to the claimed Hash.
type Engine struct {
	// ConstantTime selects a comparison whose duration does not depend on
	// where the digests differ.
	ConstantTime bool
}

// Verify returns the outcome for attrs bound to device.
func (e Engine) Verify(attrs receipt.AttributeSet, device uuid.UUID) Outcome {
	outcome, _, _ := e.evaluate(attrs, device)
	return outcome
}

// evaluate returns the outcome, a reason for anything other than Valid, and
// the computed digest when one was computed.
func (e Engine) evaluate(attrs receipt.AttributeSet, device uuid.UUID) (Outcome, string, []byte) {
	if missing := attrs.Missing(requiredAttributes...); len(missing) > 0 {
		return OutcomeMalformed, fmt.Sprintf("missing attributes: %v", missing), nil
	}

	bundleID, _ := attrs.BundleID()
	opaque, _ := attrs.Opaque()
	claimed, _ := attrs.Hash()

	sum := crypto.BindingDigest(device, opaque, bundleID)
	computed := sum[:]

	if len(claimed) != crypto.DigestSize {
		return OutcomeInvalid, fmt.Sprintf("hash attribute is %d bytes, expected %d", len(claimed), crypto.DigestSize), computed
	}
	if !crypto.DigestsEqual(computed, claimed, e.ConstantTime) {
		return OutcomeInvalid, "hash mismatch", computed
	}
	return OutcomeValid, "", computed
}
