package verify

import (
	"encoding/json"
	"fmt"
	"io"
)

// Messages written by the reporter.
const (
	InvalidInputMessage    = "Invalid input string"
	ReceiptNotFoundMessage = "Receipt not found"
)

// Formatter renders verification outcomes for each input channel
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatStructured builds the JSON response for a completed verification
func (f *Formatter) FormatStructured(outcome Outcome) StructuredResponse {
	return StructuredResponse{
		Status:       outcome.Status(),
		StatusString: outcome.StatusString(),
	}
}

// WriteStructured writes the JSON response for outcome as one line
func (f *Formatter) WriteStructured(w io.Writer, outcome Outcome) error {
	if err := json.NewEncoder(w).Encode(f.FormatStructured(outcome)); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// WriteStructuredError writes the JSON response for undecodable input
func (f *Formatter) WriteStructuredError(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: InvalidInputMessage}); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// WriteLine writes the plain Passed/Failed line used by file mode
func (f *Formatter) WriteLine(w io.Writer, outcome Outcome) error {
	_, err := fmt.Fprintln(w, outcome.StatusString())
	return err
}

// WriteNotFound writes the file mode message for an unreadable receipt path
func (f *Formatter) WriteNotFound(w io.Writer) error {
	_, err := fmt.Fprintln(w, ReceiptNotFoundMessage)
	return err
}
