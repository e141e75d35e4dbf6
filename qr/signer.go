package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer derives tamper-evident signatures binding a ticket's identity,
// its human-readable code and the payload issuance timestamp. The secret
// is server-side only.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	if secret == "" {
		panic("qr: signing secret is empty")
	}
	return Signer{secret: []byte(secret)}
}

// Sign is deterministic: verification recomputes the signature instead of
// storing it separately.
func (s Signer) Sign(ticketID, ticketCode string, timestampMs int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%s:%d", ticketID, ticketCode, timestampMs)
	return hex.EncodeToString(mac.Sum(nil))
}
