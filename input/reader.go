package input

import (
	"fmt"
	"io"
	"os"
)

// ReadFile returns the envelope bytes stored at path.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer f.Close()

	buf := NewBuffer(DefaultBufferSize)
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrIO, path, err)
	}
	return buf.Bytes(), nil
}

// ReadStreamed reads r to completion and scans it for the receipt and uuid
// fields. The read buffer is released before returning.
func ReadStreamed(r io.Reader) (LiteralRequest, error) {
	buf := NewBuffer(DefaultBufferSize)
	defer buf.Release()

	if _, err := buf.ReadFrom(r); err != nil {
		return LiteralRequest{}, fmt.Errorf("%w: failed to read standard input: %v", ErrIO, err)
	}

	fields, err := ScanFields(buf.Bytes())
	if err != nil {
		return LiteralRequest{}, err
	}
	if !fields.HasReceipt || !fields.HasUUID {
		return LiteralRequest{}, fmt.Errorf("%w: receipt and uuid fields are required", ErrMalformedStructuredInput)
	}

	req := LiteralRequest{Receipt: fields.Receipt, UUID: fields.UUID}
	if err := req.Validate(); err != nil {
		return LiteralRequest{}, fmt.Errorf("%w: %v", ErrMalformedStructuredInput, err)
	}
	return req, nil
}
