// Package deviceid converts textual device UUIDs into their 16-byte form.
//
// Parsing is more forgiving than uuid.Parse about hyphens: they may appear
// anywhere and in any number, and input after the 32nd hex digit is
// ignored. It is stricter about everything else: any other non-hex
// character before the identifier is complete is rejected.
package deviceid

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMalformedUUID is returned when the text does not hold 32 hex digits.
var ErrMalformedUUID = errors.New("malformed device uuid")

// Size is the length of a canonical device identifier.
const Size = len(uuid.UUID{})

// Parse canonicalizes uuidText into a device identifier. Hyphens are
// skipped wherever they appear, including between the two digits of a byte.
func Parse(uuidText string) (uuid.UUID, error) {
	var (
		id     uuid.UUID
		digits [2 * Size]byte
	)

	n := 0
	for i := 0; i < len(uuidText) && n < len(digits); i++ {
		c := uuidText[i]
		if c == '-' {
			continue
		}
		digits[n] = c
		n++
	}
	if n < len(digits) {
		return uuid.Nil, fmt.Errorf("%w: only %d of %d hex digits present", ErrMalformedUUID, n, len(digits))
	}

	if _, err := hex.Decode(id[:], digits[:]); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformedUUID, err)
	}
	return id, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(uuidText string) uuid.UUID {
	id, err := Parse(uuidText)
	if err != nil {
		panic(err)
	}
	return id
}
