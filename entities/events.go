package entities

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: uuid.NewString(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type IEvent interface {
	IsInternal() bool
}

type TicketCreated struct {
	Header EventHeader `json:"header"`

	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	TicketCode string `json:"ticket_code"`
	BuyerEmail string `json:"buyer_email"`
}

func (TicketCreated) IsInternal() bool { return false }

type TicketConfirmed struct {
	Header EventHeader `json:"header"`

	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	TicketCode string `json:"ticket_code"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	QRImage    string `json:"qr_image"`
}

func (TicketConfirmed) IsInternal() bool { return false }

type TicketCancelled struct {
	Header EventHeader `json:"header"`

	TicketID   string `json:"ticket_id"`
	EventID    string `json:"event_id"`
	BuyerEmail string `json:"buyer_email"`
}

func (TicketCancelled) IsInternal() bool { return false }

type TicketUsed struct {
	Header EventHeader `json:"header"`

	TicketID string    `json:"ticket_id"`
	EventID  string    `json:"event_id"`
	UsedAt   time.Time `json:"used_at"`
}

func (TicketUsed) IsInternal() bool { return false }

type PaymentReceived struct {
	Header EventHeader `json:"header"`

	Reference string `json:"reference"`
	TicketID  string `json:"ticket_id"`
	Amount    Money  `json:"amount"`
	Channel   string `json:"channel"`
}

func (PaymentReceived) IsInternal() bool { return false }

// RefundPayment is a command: void the provider transaction and mark the
// payment log refunded.
type RefundPayment struct {
	Header EventHeader `json:"header"`

	Reference string `json:"reference"`
}

// AuditEvent is the raw form every published event is archived in.
type AuditEvent struct {
	EventID     string          `json:"event_id" db:"event_id"`
	PublishedAt time.Time       `json:"published_at" db:"published_at"`
	EventName   string          `json:"event_name" db:"event_name"`
	Payload     []byte          `json:"event_payload" db:"event_payload"`
}
