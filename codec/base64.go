// Package codec decodes the textual receipt encoding into envelope bytes.
//
// The decoder is deliberately lenient so that receipts accepted by earlier
// releases of the checker keep decoding to the same bytes:
//   - decoding stops at the first byte outside the base64 alphabet, so
//     padding, whitespace or trailing garbage silently truncate the input
//   - a final group of a single character is dropped without error
//
// Use DecodeBase64 for receipt text; it fails only when nothing decodes.
package codec

import "errors"

// ErrInvalidEncoding is returned when the input decodes to zero bytes.
var ErrInvalidEncoding = errors.New("invalid base64 encoding")

// sentinel marks bytes outside the alphabet.
const sentinel = 64

// decodeTable maps every byte to its 6-bit value, or sentinel.
var decodeTable = [256]byte{
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 62, 64, 64, 64, 63,
	52, 53, 54, 55, 56, 57, 58, 59, 60, 61, 64, 64, 64, 64, 64, 64,
	64, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14,
	15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 64, 64, 64, 64, 64,
	64, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40,
	41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 51, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
	64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64, 64,
}

// DecodeBase64 decodes receipt text into raw envelope bytes.
func DecodeBase64(text string) ([]byte, error) {
	src := text[:alphabetPrefix(text)]
	out := make([]byte, 0, decodedLen(len(src)))

	for len(src) > 4 {
		out = append(out,
			decodeTable[src[0]]<<2|decodeTable[src[1]]>>4,
			decodeTable[src[1]]<<4|decodeTable[src[2]]>>2,
			decodeTable[src[2]]<<6|decodeTable[src[3]],
		)
		src = src[4:]
	}

	// A lone trailing character cannot carry a full byte and is dropped.
	if len(src) > 1 {
		out = append(out, decodeTable[src[0]]<<2|decodeTable[src[1]]>>4)
	}
	if len(src) > 2 {
		out = append(out, decodeTable[src[1]]<<4|decodeTable[src[2]]>>2)
	}
	if len(src) > 3 {
		out = append(out, decodeTable[src[2]]<<6|decodeTable[src[3]])
	}

	if len(out) == 0 {
		return nil, ErrInvalidEncoding
	}
	return out, nil
}

// alphabetPrefix returns the length of the leading run of alphabet bytes.
func alphabetPrefix(text string) int {
	for i := 0; i < len(text); i++ {
		if decodeTable[text[i]] == sentinel {
			return i
		}
	}
	return len(text)
}

// decodedLen returns the number of bytes n alphabet characters decode to.
func decodedLen(n int) int {
	full := n / 4 * 3
	switch n % 4 {
	case 2:
		return full + 1
	case 3:
		return full + 2
	default:
		return full
	}
}
