package qr

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const ticketCodeBytes = 6

// NewTicketCode returns a 12-character uppercase hex code used for manual
// lookup and printing. The code space makes collisions negligible; the
// unique constraint on tickets.ticket_code catches the rest.
func NewTicketCode() (string, error) {
	buf := make([]byte, ticketCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
