package event

import (
	"context"
	"fmt"

	"danceschool/entities"
	"danceschool/monitoring"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

func (h Handler) SendPaymentConfirmation(ctx context.Context, event *entities.PaymentReceived) error {
	logger := log.FromContext(ctx).WithField("reference", event.Reference)

	if event.TicketID == "" {
		logger.Warn("Payment received without a linked ticket, skipping confirmation email")
		return nil
	}

	ticket, err := h.ticketsRepo.GetByID(ctx, event.TicketID)
	if err != nil {
		return fmt.Errorf("could not load ticket %s for payment email: %w", event.TicketID, err)
	}

	danceEvent, err := h.eventsRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		return fmt.Errorf("could not load event %s for payment email: %w", ticket.EventID, err)
	}

	err = h.mailer.SendPaymentConfirmationEmail(ctx, entities.PaymentConfirmationEmail{
		To:         ticket.BuyerEmail,
		BuyerName:  ticket.BuyerName,
		Amount:     event.Amount,
		Reference:  event.Reference,
		EventTitle: danceEvent.Title,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to send payment confirmation email")
		monitoring.EmailSent("payment_confirmation", false)
		return nil
	}

	monitoring.EmailSent("payment_confirmation", true)
	return nil
}
