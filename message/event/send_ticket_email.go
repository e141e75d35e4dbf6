package event

import (
	"context"
	"fmt"

	"danceschool/entities"
	"danceschool/monitoring"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// SendTicketEmail reacts to a confirmed ticket. Delivery is best effort:
// the confirmation already committed, so mailer failures are logged and
// swallowed, never retried against the buyer's ticket state.
func (h Handler) SendTicketEmail(ctx context.Context, event *entities.TicketConfirmed) error {
	log.FromContext(ctx).WithField("ticket_id", event.TicketID).Info("Sending ticket email")

	danceEvent, err := h.eventsRepo.GetByID(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("could not load event %s for ticket email: %w", event.EventID, err)
	}

	err = h.mailer.SendTicketEmail(ctx, entities.TicketEmail{
		To:         event.BuyerEmail,
		BuyerName:  event.BuyerName,
		TicketID:   event.TicketID,
		TicketCode: event.TicketCode,
		QRImage:    event.QRImage,
		TicketURL:  fmt.Sprintf("%s/tickets/%s", h.frontendURL, event.TicketID),
		EventTitle: danceEvent.Title,
		EventDate:  danceEvent.Date,
		EventTime:  danceEvent.Time,
		EventVenue: danceEvent.Venue,
	})
	if err != nil {
		log.FromContext(ctx).WithError(err).Error("Failed to send ticket email")
		monitoring.EmailSent("ticket", false)
		return nil
	}

	monitoring.EmailSent("ticket", true)
	return nil
}
