package qr

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"time"
)

// MaxPayloadAge bounds how long a generated payload stays scannable,
// measured from generation time, not event time.
const MaxPayloadAge = 24 * time.Hour

const (
	reasonFormat    = "Invalid QR code format"
	reasonExpired   = "QR code expired"
	reasonSignature = "Invalid QR code signature"
)

type payloadRecord struct {
	TicketID   string `json:"ticketId"`
	TicketCode string `json:"ticketCode"`
	Timestamp  int64  `json:"timestamp"`
	Signature  string `json:"signature"`
}

// Decoded is the result of Codec.Decode. When Valid is false, Reason holds
// one of the fixed category strings and the identity fields are empty.
type Decoded struct {
	Valid      bool
	TicketID   string
	TicketCode string
	Reason     string
}

// Codec builds and checks the opaque payload strings embedded in QR codes.
type Codec struct {
	signer Signer
	now    func() time.Time
}

func NewCodec(signer Signer) Codec {
	return Codec{signer: signer, now: time.Now}
}

// NewCodecWithClock injects the time source, for expiry tests.
func NewCodecWithClock(signer Signer, now func() time.Time) Codec {
	return Codec{signer: signer, now: now}
}

// Encode captures the current time, signs (id, code, timestamp) and wraps
// the record in base64 so it survives QR embedding and copy-paste.
func (c Codec) Encode(ticketID, ticketCode string) string {
	timestamp := c.now().UnixMilli()
	record := payloadRecord{
		TicketID:   ticketID,
		TicketCode: ticketCode,
		Timestamp:  timestamp,
		Signature:  c.signer.Sign(ticketID, ticketCode, timestamp),
	}

	data, err := json.Marshal(record)
	if err != nil {
		// payloadRecord has no unmarshalable fields
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

func (c Codec) Decode(payload string) Decoded {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Decoded{Reason: reasonFormat}
	}

	var record payloadRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return Decoded{Reason: reasonFormat}
	}
	if record.TicketID == "" || record.TicketCode == "" || record.Signature == "" {
		return Decoded{Reason: reasonFormat}
	}

	issuedAt := time.UnixMilli(record.Timestamp)
	if c.now().Sub(issuedAt) > MaxPayloadAge {
		return Decoded{Reason: reasonExpired}
	}

	expected := c.signer.Sign(record.TicketID, record.TicketCode, record.Timestamp)
	if !hmac.Equal([]byte(expected), []byte(record.Signature)) {
		return Decoded{Reason: reasonSignature}
	}

	return Decoded{
		Valid:      true,
		TicketID:   record.TicketID,
		TicketCode: record.TicketCode,
	}
}
