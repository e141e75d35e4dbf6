package qr

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(NewSigner(testSecret))

	payload := codec.Encode("2741c2ee-a9a4-4435-9a80-4d8181d3d0fb", "ABC123DEF456")
	decoded := codec.Decode(payload)

	require.True(t, decoded.Valid, "reason: %s", decoded.Reason)
	assert.Equal(t, "2741c2ee-a9a4-4435-9a80-4d8181d3d0fb", decoded.TicketID)
	assert.Equal(t, "ABC123DEF456", decoded.TicketCode)
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := NewCodec(NewSigner(testSecret))

	for _, payload := range []string{
		"",
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`{"ticketId":""}`)),
	} {
		decoded := codec.Decode(payload)
		assert.False(t, decoded.Valid)
		assert.Equal(t, "Invalid QR code format", decoded.Reason)
	}
}

func TestCodecRejectsTamperedPayload(t *testing.T) {
	codec := NewCodec(NewSigner(testSecret))
	payload := codec.Encode("ticket-1", "ABC123DEF456")

	// flip a handful of interior characters, one at a time
	for _, pos := range []int{10, 20, 30, len(payload) / 2} {
		flipped := flipChar(payload, pos)
		require.NotEqual(t, payload, flipped)

		decoded := codec.Decode(flipped)
		assert.False(t, decoded.Valid, "tampering at position %d accepted", pos)
	}
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	payload := NewCodec(NewSigner(testSecret)).Encode("ticket-1", "ABC123DEF456")
	decoded := NewCodec(NewSigner(testSecret + "-other")).Decode(payload)

	assert.False(t, decoded.Valid)
	assert.Equal(t, "Invalid QR code signature", decoded.Reason)
}

func TestCodecRejectsExpiredPayload(t *testing.T) {
	signer := NewSigner(testSecret)
	issued := time.Now().Add(-25 * time.Hour)

	stale := NewCodecWithClock(signer, func() time.Time { return issued })
	payload := stale.Encode("ticket-1", "ABC123DEF456")

	decoded := NewCodec(signer).Decode(payload)
	assert.False(t, decoded.Valid)
	assert.Equal(t, "QR code expired", decoded.Reason)
}

func TestCodecAcceptsPayloadWithinWindow(t *testing.T) {
	signer := NewSigner(testSecret)
	issued := time.Now().Add(-23 * time.Hour)

	stale := NewCodecWithClock(signer, func() time.Time { return issued })
	payload := stale.Encode("ticket-1", "ABC123DEF456")

	assert.True(t, NewCodec(signer).Decode(payload).Valid)
}

func TestCodecExpiryIgnoresSignatureValidity(t *testing.T) {
	// an expired record is rejected before the signature is even checked
	record := payloadRecord{
		TicketID:   "ticket-1",
		TicketCode: "ABC123DEF456",
		Timestamp:  time.Now().Add(-25 * time.Hour).UnixMilli(),
		Signature:  "definitely-not-a-signature",
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)

	decoded := NewCodec(NewSigner(testSecret)).Decode(base64.StdEncoding.EncodeToString(data))
	assert.Equal(t, "QR code expired", decoded.Reason)
}

func flipChar(s string, pos int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	replacement := alphabet[0]
	if s[pos] == replacement {
		replacement = alphabet[1]
	}
	return s[:pos] + string(replacement) + s[pos+1:]
}

func TestNewTicketCodeFormat(t *testing.T) {
	code, err := NewTicketCode()
	require.NoError(t, err)
	assert.Len(t, code, 12)
	assert.Equal(t, strings.ToUpper(code), code)
	assert.Regexp(t, "^[0-9A-F]{12}$", code)
}

func TestNewTicketCodeUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		code, err := NewTicketCode()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate ticket code %s", code)
		seen[code] = struct{}{}
	}
}
