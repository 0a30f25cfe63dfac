package verify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anchorageoss/checkreceipt/codec"
	"github.com/anchorageoss/checkreceipt/crypto"
	"github.com/anchorageoss/checkreceipt/deviceid"
	"github.com/anchorageoss/checkreceipt/receipt"
)

// EnvelopeUnwrapper extracts the signed payload from a receipt envelope
type EnvelopeUnwrapper interface {
	Unwrap(envelope []byte) ([]byte, error)
}

// PayloadDecoder decodes payload bytes into receipt attributes
type PayloadDecoder interface {
	Decode(payload []byte) ([]receipt.Attribute, error)
}

// Service handles receipt validation
type Service struct {
	unwrapper EnvelopeUnwrapper
	decoder   PayloadDecoder
	engine    Engine
	logger    *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithUnwrapper replaces the PKCS#7 envelope unwrapper
func WithUnwrapper(u EnvelopeUnwrapper) Option {
	return func(s *Service) {
		s.unwrapper = u
	}
}

// WithDecoder replaces the ASN.1 payload decoder
func WithDecoder(d PayloadDecoder) Option {
	return func(s *Service) {
		s.decoder = d
	}
}

// WithConstantTimeCompare makes the digest comparison constant-time
func WithConstantTimeCompare() Option {
	return func(s *Service) {
		s.engine.ConstantTime = true
	}
}

// NewService creates a validation service. A nil logger discards output.
func NewService(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		unwrapper: receipt.PKCS7Unwrapper{},
		decoder:   receipt.ASN1Decoder{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateBase64 decodes receipt text and validates it against uuidText
func (s *Service) ValidateBase64(ctx context.Context, receiptText, uuidText string) (*ValidateResult, error) {
	envelope, err := codec.DecodeBase64(receiptText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	s.logger.DebugContext(ctx, "decoded receipt text", "text_len", len(receiptText), "envelope_len", len(envelope))

	return s.Validate(ctx, envelope, uuidText)
}

// Validate checks that the receipt envelope is bound to the device uuidText.
// Decode failures are returned as errors; verification verdicts, including
// missing attributes, are returned in the result.
func (s *Service) Validate(ctx context.Context, envelope []byte, uuidText string) (*ValidateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	device, err := deviceid.Parse(uuidText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse device uuid: %w", err)
	}

	// Step 1: unwrap the signed envelope
	payload, err := s.unwrapper.Unwrap(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap receipt: %w", err)
	}
	s.logger.DebugContext(ctx, "unwrapped envelope", "payload_len", len(payload))

	// Step 2: decode and index the payload attributes
	attrs, err := s.decoder.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode receipt payload: %w", err)
	}
	set := receipt.NewAttributeSet(attrs)
	s.logger.DebugContext(ctx, "decoded payload", "attributes", len(attrs), "recognized", set.Len())

	// Step 3: recompute and compare the binding digest
	outcome, reason, computed := s.engine.evaluate(set, device)

	result := &ValidateResult{
		Outcome:    outcome,
		Reason:     reason,
		Device:     device,
		Attributes: set,
		Computed:   computed,
	}

	attrsLog := []any{"outcome", outcome.String(), "device", device.String()}
	if computed != nil {
		attrsLog = append(attrsLog, "computed", crypto.DigestHex(computed))
	}
	if reason != "" {
		attrsLog = append(attrsLog, "reason", reason)
	}
	s.logger.DebugContext(ctx, "verification complete", attrsLog...)

	return result, nil
}
