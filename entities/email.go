package entities

import "time"

type TicketEmail struct {
	To         string
	BuyerName  string
	TicketID   string
	TicketCode string
	QRImage    string
	TicketURL  string

	EventTitle string
	EventDate  time.Time
	EventTime  string
	EventVenue string
}

type PaymentConfirmationEmail struct {
	To         string
	BuyerName  string
	Amount     Money
	Reference  string
	EventTitle string
}
