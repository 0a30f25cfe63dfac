package input

import "fmt"

// The streamed grammar is intentionally tiny: a flat object whose values are
// double-quoted strings. There are no escape sequences, nested objects,
// arrays, numbers or booleans, and quotes cannot appear inside a value.
// Braces and whitespace outside strings are not checked.

type scanState int

const (
	stateOutside scanState = iota
	stateInQuotedString
)

// span marks a captured quoted string inside the scanned bytes.
type span struct {
	start, end int
	ok         bool
}

// Fields are the values bound from streamed input.
type Fields struct {
	Receipt    string
	UUID       string
	HasReceipt bool
	HasUUID    bool
}

// ScanFields extracts the "receipt" and "uuid" values from data. A repeated
// key keeps its last value; other keys are ignored.
func ScanFields(data []byte) (Fields, error) {
	var (
		fields  Fields
		state   = stateOutside
		current span
		key     span
	)

	for i, c := range data {
		switch state {
		case stateOutside:
			switch c {
			case '"':
				state = stateInQuotedString
				current = span{start: i + 1}
			case ':':
				key = current
				current = span{}
			case ',', '}':
				if key.ok && current.ok {
					fields.bind(string(data[key.start:key.end]), string(data[current.start:current.end]))
				}
				key, current = span{}, span{}
			}
		case stateInQuotedString:
			if c == '"' {
				current.end = i
				current.ok = true
				state = stateOutside
			}
		}
	}

	if state == stateInQuotedString {
		return Fields{}, fmt.Errorf("%w: unterminated quoted string at offset %d", ErrMalformedStructuredInput, current.start-1)
	}
	return fields, nil
}

func (f *Fields) bind(key, value string) {
	switch key {
	case "receipt":
		f.Receipt, f.HasReceipt = value, true
	case "uuid":
		f.UUID, f.HasUUID = value, true
	}
}
