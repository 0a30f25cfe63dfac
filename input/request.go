// Package input acquires a receipt and device identifier from one of three
// channels: a receipt file, literal arguments, or a flat JSON-like object
// streamed on standard input.
//
// Classify turns the supplied flags into exactly one Request; each request
// type maps to one acquisition path.
package input

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUsage is returned unless exactly one recognized flag combination
	// is supplied.
	ErrUsage = errors.New("no recognized input combination")
	// ErrFileNotFound is returned when the receipt file cannot be opened.
	ErrFileNotFound = errors.New("receipt not found")
	// ErrIO is returned when reading an opened input fails.
	ErrIO = errors.New("input read failure")
	// ErrMalformedStructuredInput is returned when streamed input cannot be scanned
	// or lacks the receipt or uuid field.
	ErrMalformedStructuredInput = errors.New("malformed structured input")
)

// validate is shared; validator caches struct metadata.
var validate = validator.New()

// Mode names an input channel.
type Mode int

const (
	ModeFile Mode = iota
	ModeLiteral
	ModeStreamed
)

func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeLiteral:
		return "literal"
	case ModeStreamed:
		return "streamed"
	default:
		return "unknown"
	}
}

// Request is one of FileRequest, LiteralRequest or StreamedRequest.
type Request interface {
	Mode() Mode
	Validate() error
	isRequest()
}

// FileRequest reads envelope bytes from Path.
type FileRequest struct {
	Path string `validate:"required"`
	UUID string `validate:"required"`
}

// LiteralRequest carries base64 receipt text and a device uuid.
type LiteralRequest struct {
	Receipt string `validate:"required"`
	UUID    string `validate:"required"`
}

// StreamedRequest reads a LiteralRequest from standard input.
type StreamedRequest struct {
	FromStdin bool `validate:"required"`
}

func (FileRequest) Mode() Mode     { return ModeFile }
func (LiteralRequest) Mode() Mode  { return ModeLiteral }
func (StreamedRequest) Mode() Mode { return ModeStreamed }

func (r FileRequest) Validate() error     { return validate.Struct(r) }
func (r LiteralRequest) Validate() error  { return validate.Struct(r) }
func (r StreamedRequest) Validate() error { return validate.Struct(r) }

func (FileRequest) isRequest()     {}
func (LiteralRequest) isRequest()  {}
func (StreamedRequest) isRequest() {}

// Flags holds the raw command-line inputs. Empty strings mean unset.
type Flags struct {
	ReceiptPath string
	UUID        string
	JSONString  string
	JSON        bool
}

// Classify picks the request for flags. Exactly one combination must be
// complete; none or several is ErrUsage.
func Classify(flags Flags) (Request, error) {
	candidates := []Request{
		FileRequest{Path: flags.ReceiptPath, UUID: flags.UUID},
		LiteralRequest{Receipt: flags.JSONString, UUID: flags.UUID},
		StreamedRequest{FromStdin: flags.JSON},
	}

	var selected Request
	for _, req := range candidates {
		if req.Validate() != nil {
			continue
		}
		if selected != nil {
			return nil, fmt.Errorf("%w: both %s and %s input supplied", ErrUsage, selected.Mode(), req.Mode())
		}
		selected = req
	}
	if selected == nil {
		return nil, ErrUsage
	}
	return selected, nil
}
