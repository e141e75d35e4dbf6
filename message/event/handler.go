package event

import (
	"context"

	"danceschool/entities"
)

type MailerService interface {
	SendTicketEmail(ctx context.Context, email entities.TicketEmail) error
	SendPaymentConfirmationEmail(ctx context.Context, email entities.PaymentConfirmationEmail) error
}

type EventsRepository interface {
	GetByID(ctx context.Context, eventID string) (entities.DanceEvent, error)
}

type TicketsRepository interface {
	GetByID(ctx context.Context, ticketID string) (entities.Ticket, error)
}

type Handler struct {
	mailer      MailerService
	eventsRepo  EventsRepository
	ticketsRepo TicketsRepository
	frontendURL string
}

func NewHandler(mailer MailerService, eventsRepo EventsRepository, ticketsRepo TicketsRepository, frontendURL string) Handler {
	if mailer == nil {
		panic("missing mailer")
	}
	if eventsRepo == nil {
		panic("missing eventsRepo")
	}
	if ticketsRepo == nil {
		panic("missing ticketsRepo")
	}
	return Handler{
		mailer:      mailer,
		eventsRepo:  eventsRepo,
		ticketsRepo: ticketsRepo,
		frontendURL: frontendURL,
	}
}
