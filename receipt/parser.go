package receipt

import (
	"encoding/asn1"
	"errors"
	"fmt"

	"github.com/smallstep/pkcs7"
)

var (
	// ErrEnvelopeDecode is returned when the signed-data envelope cannot be read.
	ErrEnvelopeDecode = errors.New("envelope decode failure")
	// ErrPayloadDecode is returned when the payload is not a SET OF attributes.
	ErrPayloadDecode = errors.New("payload decode failure")
)

// PKCS7Unwrapper extracts the signed content of a PKCS#7 envelope.
type PKCS7Unwrapper struct{}

// Unwrap returns the inner payload bytes of envelope.
func (PKCS7Unwrapper) Unwrap(envelope []byte) ([]byte, error) {
	p7, err := pkcs7.Parse(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeDecode, err)
	}
	if len(p7.Content) == 0 {
		return nil, fmt.Errorf("%w: envelope carries no content", ErrEnvelopeDecode)
	}
	return p7.Content, nil
}

// asn1Attribute mirrors the DER layout of one attribute.
type asn1Attribute struct {
	Type    int
	Version int
	Value   []byte
}

// ASN1Decoder decodes a DER SET OF receipt attributes.
type ASN1Decoder struct{}

// Decode returns the attributes of payload in encoded order. Bytes after
// the SET are ignored.
func (ASN1Decoder) Decode(payload []byte) ([]Attribute, error) {
	var raw []asn1Attribute
	if _, err := asn1.UnmarshalWithParams(payload, &raw, "set"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
	}

	attrs := make([]Attribute, 0, len(raw))
	for _, r := range raw {
		attrs = append(attrs, Attribute{
			Type:    AttributeType(r.Type),
			Version: r.Version,
			Value:   r.Value,
		})
	}
	return attrs, nil
}

// ParseEnvelope unwraps envelope and indexes its payload attributes using
// the default collaborators.
func ParseEnvelope(envelope []byte) (AttributeSet, error) {
	payload, err := PKCS7Unwrapper{}.Unwrap(envelope)
	if err != nil {
		return AttributeSet{}, err
	}
	attrs, err := ASN1Decoder{}.Decode(payload)
	if err != nil {
		return AttributeSet{}, err
	}
	return NewAttributeSet(attrs), nil
}
