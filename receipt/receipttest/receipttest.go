// Package receipttest builds signed receipts for tests.
//
// Receipts are generated on the fly: the payload is DER-encoded with
// encoding/asn1 and wrapped in PKCS#7 signed data signed by a throwaway
// self-signed ECDSA certificate.
package receipttest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smallstep/pkcs7"

	"github.com/anchorageoss/checkreceipt/crypto"
	"github.com/anchorageoss/checkreceipt/receipt"
)

// Fixture values of the reference receipt.
const (
	BundleID      = "com.example.app"
	BundleVersion = "1.0"
	Opaque        = "OPAQUE"
	DeviceUUID    = "438498A7-4850-41DB-BCBE-4E1756378E39"
)

type derAttribute struct {
	Type    int
	Version int
	Value   []byte
}

// Device returns the fixture device identifier.
func Device() uuid.UUID {
	return uuid.MustParse(DeviceUUID)
}

// FixtureHash returns the binding digest of the fixture attributes for device.
func FixtureHash(device uuid.UUID) []byte {
	sum := crypto.BindingDigest(device, []byte(Opaque), []byte(BundleID))
	return sum[:]
}

// Attributes returns the fixture attribute list bound to device, including
// an unrecognized tag.
func Attributes(device uuid.UUID) []receipt.Attribute {
	return []receipt.Attribute{
		{Type: receipt.TypeBundleID, Version: 1, Value: []byte(BundleID)},
		{Type: receipt.TypeBundleVersion, Version: 1, Value: []byte(BundleVersion)},
		{Type: receipt.TypeOpaque, Version: 1, Value: []byte(Opaque)},
		{Type: receipt.TypeHash, Version: 1, Value: FixtureHash(device)},
		{Type: 17, Version: 1, Value: []byte("in-app")},
	}
}

// BuildPayload DER-encodes attrs as a SET OF receipt attributes.
func BuildPayload(attrs []receipt.Attribute) ([]byte, error) {
	raw := make([]derAttribute, 0, len(attrs))
	for _, a := range attrs {
		raw = append(raw, derAttribute{Type: int(a.Type), Version: a.Version, Value: a.Value})
	}
	payload, err := asn1.MarshalWithParams(raw, "set")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return payload, nil
}

// BuildEnvelope wraps payload in PKCS#7 signed data.
func BuildEnvelope(payload []byte) ([]byte, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "checkreceipt test issuer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	sd, err := pkcs7.NewSignedData(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create signed data: %w", err)
	}
	if err := sd.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("failed to add signer: %w", err)
	}
	envelope, err := sd.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to finish signed data: %w", err)
	}
	return envelope, nil
}

// BuildReceipt returns the PKCS#7 envelope for attrs.
func BuildReceipt(t testing.TB, attrs []receipt.Attribute) []byte {
	t.Helper()

	payload, err := BuildPayload(attrs)
	if err != nil {
		t.Fatal(err)
	}
	envelope, err := BuildEnvelope(payload)
	if err != nil {
		t.Fatal(err)
	}
	return envelope
}

// BuildReceiptBase64 returns the base64 text of the envelope for attrs.
func BuildReceiptBase64(t testing.TB, attrs []receipt.Attribute) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(BuildReceipt(t, attrs))
}
