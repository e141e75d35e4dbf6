package entities

import (
	"encoding/json"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// PaymentLog tracks one provider transaction, keyed by the provider
// reference. Linked 0..1 to a ticket.
type PaymentLog struct {
	Reference string        `json:"reference" db:"reference"`
	TicketID  *string       `json:"ticket_id,omitempty" db:"ticket_id"`
	Amount    Money         `json:"amount" db:"amount"`
	Provider  string        `json:"provider" db:"provider"`
	Status    PaymentStatus `json:"status" db:"status"`
	Channel   string        `json:"channel" db:"channel"`

	PaidAt     *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty" db:"raw_payload"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type PaymentInitRequest struct {
	Email     string
	Amount    Money
	Reference string
	TicketID  string
	Callback  string
}

// PaymentInit is the payment-initiation handle returned to the buyer.
type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaymentRefundRequest struct {
	Reference string
	Amount    *Money
}
