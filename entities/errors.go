package entities

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventSoldOut    = errors.New("event is sold out")
	ErrEventHasTickets = errors.New("event has outstanding tickets")

	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketAlreadyUsed  = errors.New("ticket has already been used")
	ErrTicketNotConfirmed = errors.New("ticket payment not confirmed")

	ErrPaymentLogNotFound = errors.New("payment log not found")
)
