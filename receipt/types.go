// Package receipt unwraps signed installation receipts and exposes their
// payload attributes.
//
// A receipt is a PKCS#7 signed-data envelope whose content is a DER SET OF
// attributes:
//
//	ReceiptAttribute ::= SEQUENCE {
//	    type    INTEGER,
//	    version INTEGER,
//	    value   OCTET STRING
//	}
//
// # Parsing
//
// Unwrap the envelope and decode the payload, then index the attributes:
//
//	payload, err := receipt.PKCS7Unwrapper{}.Unwrap(envelopeBytes)
//	if err != nil {
//		return err
//	}
//	attrs, err := receipt.ASN1Decoder{}.Decode(payload)
//	if err != nil {
//		return err
//	}
//	set := receipt.NewAttributeSet(attrs)
//	bundleID, ok := set.BundleID()
//
// The envelope signature is trusted as-is; certificate chains are not
// re-validated here.
package receipt

// AttributeType is the integer tag of a payload attribute.
type AttributeType int

// Recognized attribute tags.
const (
	TypeBundleID      AttributeType = 2
	TypeBundleVersion AttributeType = 3
	TypeOpaque        AttributeType = 4
	TypeHash          AttributeType = 5
)

// String returns the attribute name for recognized tags.
func (t AttributeType) String() string {
	switch t {
	case TypeBundleID:
		return "BundleID"
	case TypeBundleVersion:
		return "BundleVersion"
	case TypeOpaque:
		return "Opaque"
	case TypeHash:
		return "Hash"
	default:
		return "Unknown"
	}
}

func (t AttributeType) recognized() bool {
	switch t {
	case TypeBundleID, TypeBundleVersion, TypeOpaque, TypeHash:
		return true
	}
	return false
}

// Attribute is one typed field of the receipt payload, in encoded order.
type Attribute struct {
	Type    AttributeType
	Version int
	Value   []byte
}

// AttributeSet indexes the recognized attributes of a payload.
type AttributeSet struct {
	values map[AttributeType][]byte
}

// NewAttributeSet scans attrs once. Unrecognized tags are skipped and a
// repeated tag keeps its last value.
func NewAttributeSet(attrs []Attribute) AttributeSet {
	values := make(map[AttributeType][]byte, 4)
	for _, attr := range attrs {
		if !attr.Type.recognized() {
			continue
		}
		values[attr.Type] = attr.Value
	}
	return AttributeSet{values: values}
}

// Get returns the value for tag and whether it was present.
func (s AttributeSet) Get(tag AttributeType) ([]byte, bool) {
	v, ok := s.values[tag]
	return v, ok
}

// Len returns the number of recognized attributes present.
func (s AttributeSet) Len() int {
	return len(s.values)
}

func (s AttributeSet) BundleID() ([]byte, bool)      { return s.Get(TypeBundleID) }
func (s AttributeSet) BundleVersion() ([]byte, bool) { return s.Get(TypeBundleVersion) }
func (s AttributeSet) Opaque() ([]byte, bool)        { return s.Get(TypeOpaque) }
func (s AttributeSet) Hash() ([]byte, bool)          { return s.Get(TypeHash) }

// Missing lists the tags out of required that are absent.
func (s AttributeSet) Missing(required ...AttributeType) []AttributeType {
	var missing []AttributeType
	for _, tag := range required {
		if _, ok := s.values[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	return missing
}
