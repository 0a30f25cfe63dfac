package verify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/checkreceipt/codec"
	"github.com/anchorageoss/checkreceipt/deviceid"
	"github.com/anchorageoss/checkreceipt/receipt"
	"github.com/anchorageoss/checkreceipt/receipt/receipttest"
)

// Mock implementations

type mockUnwrapper struct {
	payload []byte
	err     error
	calls   int
}

func (m *mockUnwrapper) Unwrap(envelope []byte) ([]byte, error) {
	m.calls++
	return m.payload, m.err
}

type mockDecoder struct {
	attrs []receipt.Attribute
	err   error
	calls int
}

func (m *mockDecoder) Decode(payload []byte) ([]receipt.Attribute, error) {
	m.calls++
	return m.attrs, m.err
}

func TestNewService(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		service := NewService(nil)

		require.NotNil(t, service)
		require.IsType(t, receipt.PKCS7Unwrapper{}, service.unwrapper)
		require.IsType(t, receipt.ASN1Decoder{}, service.decoder)
		require.False(t, service.engine.ConstantTime)
		require.NotNil(t, service.logger)
	})

	t.Run("options", func(t *testing.T) {
		unwrapper := &mockUnwrapper{}
		decoder := &mockDecoder{}
		service := NewService(slog.Default(), WithUnwrapper(unwrapper), WithDecoder(decoder), WithConstantTimeCompare())

		require.Equal(t, unwrapper, service.unwrapper)
		require.Equal(t, decoder, service.decoder)
		require.True(t, service.engine.ConstantTime)
	})
}

func TestServiceValidate(t *testing.T) {
	ctx := context.Background()
	device := receipttest.Device()

	t.Run("valid fixture receipt", func(t *testing.T) {
		envelope := receipttest.BuildReceipt(t, receipttest.Attributes(device))
		service := NewService(nil)

		result, err := service.Validate(ctx, envelope, receipttest.DeviceUUID)
		require.NoError(t, err)
		require.Equal(t, OutcomeValid, result.Outcome)
		require.Empty(t, result.Reason)
		require.Equal(t, device, result.Device)
		require.Equal(t, receipttest.FixtureHash(device), result.Computed)
		require.Equal(t, 4, result.Attributes.Len())
	})

	t.Run("receipt bound to another device", func(t *testing.T) {
		envelope := receipttest.BuildReceipt(t, receipttest.Attributes(device))
		service := NewService(nil, WithConstantTimeCompare())

		result, err := service.Validate(ctx, envelope, "00000000-0000-0000-0000-000000000001")
		require.NoError(t, err)
		require.Equal(t, OutcomeInvalid, result.Outcome)
		require.Equal(t, "hash mismatch", result.Reason)
	})

	t.Run("receipt without hash attribute", func(t *testing.T) {
		envelope := receipttest.BuildReceipt(t, []receipt.Attribute{
			{Type: receipt.TypeBundleID, Value: []byte(receipttest.BundleID)},
			{Type: receipt.TypeOpaque, Value: []byte(receipttest.Opaque)},
		})
		service := NewService(nil)

		result, err := service.Validate(ctx, envelope, receipttest.DeviceUUID)
		require.NoError(t, err)
		require.Equal(t, OutcomeMalformed, result.Outcome)
		require.Contains(t, result.Reason, "Hash")
	})

	t.Run("malformed uuid", func(t *testing.T) {
		unwrapper := &mockUnwrapper{}
		service := NewService(nil, WithUnwrapper(unwrapper))

		_, err := service.Validate(ctx, []byte("envelope"), "438498A7")
		require.ErrorIs(t, err, deviceid.ErrMalformedUUID)
		require.Contains(t, err.Error(), "failed to parse device uuid")
		require.Zero(t, unwrapper.calls)
	})

	t.Run("envelope failure", func(t *testing.T) {
		decoder := &mockDecoder{}
		service := NewService(nil, WithDecoder(decoder))

		_, err := service.Validate(ctx, []byte("not a receipt"), receipttest.DeviceUUID)
		require.ErrorIs(t, err, receipt.ErrEnvelopeDecode)
		require.Contains(t, err.Error(), "failed to unwrap receipt")
		require.Zero(t, decoder.calls)
	})

	t.Run("payload failure", func(t *testing.T) {
		unwrapper := &mockUnwrapper{payload: []byte("payload")}
		decoder := &mockDecoder{err: receipt.ErrPayloadDecode}
		service := NewService(nil, WithUnwrapper(unwrapper), WithDecoder(decoder))

		_, err := service.Validate(ctx, []byte("envelope"), receipttest.DeviceUUID)
		require.ErrorIs(t, err, receipt.ErrPayloadDecode)
		require.Contains(t, err.Error(), "failed to decode receipt payload")
		require.Equal(t, 1, unwrapper.calls)
		require.Equal(t, 1, decoder.calls)
	})

	t.Run("mock collaborators", func(t *testing.T) {
		unwrapper := &mockUnwrapper{payload: []byte("payload")}
		decoder := &mockDecoder{attrs: receipttest.Attributes(device)}
		service := NewService(nil, WithUnwrapper(unwrapper), WithDecoder(decoder))

		result, err := service.Validate(ctx, []byte("envelope"), strings.ToLower(receipttest.DeviceUUID))
		require.NoError(t, err)
		require.Equal(t, OutcomeValid, result.Outcome)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewService(nil).Validate(cancelled, nil, receipttest.DeviceUUID)
		require.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("logs pipeline steps", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		envelope := receipttest.BuildReceipt(t, receipttest.Attributes(device))

		_, err := NewService(logger).Validate(ctx, envelope, receipttest.DeviceUUID)
		require.NoError(t, err)

		output := buf.String()
		require.Contains(t, output, "unwrapped envelope")
		require.Contains(t, output, "decoded payload")
		require.Contains(t, output, "outcome=Valid")
	})
}

func TestServiceValidateBase64(t *testing.T) {
	ctx := context.Background()
	device := receipttest.Device()
	text := receipttest.BuildReceiptBase64(t, receipttest.Attributes(device))

	t.Run("valid", func(t *testing.T) {
		result, err := NewService(nil).ValidateBase64(ctx, text, receipttest.DeviceUUID)
		require.NoError(t, err)
		require.Equal(t, OutcomeValid, result.Outcome)
	})

	t.Run("trailing newline is ignored", func(t *testing.T) {
		result, err := NewService(nil).ValidateBase64(ctx, text+"\n", receipttest.DeviceUUID)
		require.NoError(t, err)
		require.Equal(t, OutcomeValid, result.Outcome)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := NewService(nil).ValidateBase64(ctx, "!!!", receipttest.DeviceUUID)
		require.ErrorIs(t, err, codec.ErrInvalidEncoding)
	})

	t.Run("decodes but is not a receipt", func(t *testing.T) {
		_, err := NewService(nil).ValidateBase64(ctx, "TWFu", receipttest.DeviceUUID)
		require.ErrorIs(t, err, receipt.ErrEnvelopeDecode)
	})
}
