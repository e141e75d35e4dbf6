package entities

import "time"

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusConfirmed TicketStatus = "CONFIRMED"
	TicketStatusUsed      TicketStatus = "USED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

type Ticket struct {
	TicketID   string       `json:"ticket_id" db:"ticket_id"`
	EventID    string       `json:"event_id" db:"event_id"`
	TicketCode string       `json:"ticket_code" db:"ticket_code"`
	QRPayload  string       `json:"qr_payload" db:"qr_payload"`
	QRImage    string       `json:"qr_image" db:"qr_image"`
	Status     TicketStatus `json:"status" db:"status"`

	BuyerName  string  `json:"buyer_name" db:"buyer_name"`
	BuyerEmail string  `json:"buyer_email" db:"buyer_email"`
	BuyerPhone string  `json:"buyer_phone" db:"buyer_phone"`
	UserID     *string `json:"user_id,omitempty" db:"user_id"`

	IssuedAt  *time.Time `json:"issued_at,omitempty" db:"issued_at"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// TicketVerification is the outcome of checking a scanned QR payload
// against the signature, the expiry window and the persisted ticket state.
type TicketVerification struct {
	Valid  bool       `json:"valid"`
	Error  string     `json:"error,omitempty"`
	UsedAt *time.Time `json:"used_at,omitempty"`

	Ticket *VerifiedTicket `json:"ticket,omitempty"`
}

// VerifiedTicket is the redacted view handed to the door scanner.
type VerifiedTicket struct {
	ID        string              `json:"id"`
	Code      string              `json:"code"`
	BuyerName string              `json:"buyer_name"`
	Event     VerifiedTicketEvent `json:"event"`
}

type VerifiedTicketEvent struct {
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Time  string    `json:"time"`
	Venue string    `json:"venue"`
}
