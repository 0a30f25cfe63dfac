// Package crypto computes and compares receipt binding digests.
//
// The binding digest ties a receipt to one device and one application:
//
//	digest := crypto.BindingDigest(deviceID, opaque, bundleID)
//	ok := crypto.DigestsEqual(digest[:], claimedHash, false)
//
// The input order is fixed by the receipt issuer and must not change.
package crypto

import (
	"bytes"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// DigestSize is the length of a binding digest.
const DigestSize = sha1.Size

// BindingDigest computes SHA-1(device || opaque || bundleID).
func BindingDigest(device uuid.UUID, opaque, bundleID []byte) [DigestSize]byte {
	h := sha1.New()
	h.Write(device[:])
	h.Write(opaque)
	h.Write(bundleID)

	var sum [DigestSize]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// DigestsEqual reports whether computed and claimed are identical. A length
// mismatch is reported as unequal.
//
// With constantTime false the comparison returns at the first differing
// byte. That leaks timing and is only acceptable for local, offline checks;
// callers exposed to untrusted parties over a network must pass true.
func DigestsEqual(computed, claimed []byte, constantTime bool) bool {
	if len(computed) != len(claimed) {
		return false
	}
	if constantTime {
		return subtle.ConstantTimeCompare(computed, claimed) == 1
	}
	return bytes.Equal(computed, claimed)
}

// DigestHex returns the hex form of a digest for logging.
func DigestHex(digest []byte) string {
	return hex.EncodeToString(digest)
}
