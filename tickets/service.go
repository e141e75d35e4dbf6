package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"danceschool/db"
	"danceschool/entities"
	"danceschool/monitoring"
	"danceschool/qr"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

const createRetries = 3

type EventsRepository interface {
	GetByID(ctx context.Context, eventID string) (entities.DanceEvent, error)
}

type TicketsRepository interface {
	Create(ctx context.Context, ticket entities.Ticket) error
	Confirm(ctx context.Context, ticketID string) (entities.Ticket, error)
	MarkUsed(ctx context.Context, ticketID string) (entities.Ticket, error)
	Cancel(ctx context.Context, ticketID string) (entities.Ticket, error)
	GetByID(ctx context.Context, ticketID string) (entities.Ticket, error)
	GetByQRPayload(ctx context.Context, qrPayload string) (entities.Ticket, error)
	LinkToUser(ctx context.Context, email, userID string) (int64, error)
}

type PaymentsRepository interface {
	Create(ctx context.Context, log entities.PaymentLog) error
	MarkSuccess(ctx context.Context, reference string, paidAt time.Time, channel string, raw json.RawMessage) (entities.PaymentLog, error)
	MarkFailed(ctx context.Context, reference string, raw json.RawMessage) (entities.PaymentLog, error)
}

type PaymentsProvider interface {
	Initialize(ctx context.Context, req entities.PaymentInitRequest) (entities.PaymentInit, error)
}

// Service drives the ticket lifecycle: checkout, payment outcomes, QR
// verification and admission.
type Service struct {
	codec    qr.Codec
	tickets  TicketsRepository
	events   EventsRepository
	payments PaymentsRepository
	provider PaymentsProvider

	qrSize      int
	callbackURL string
}

func NewService(
	codec qr.Codec,
	tickets TicketsRepository,
	events EventsRepository,
	payments PaymentsRepository,
	provider PaymentsProvider,
	qrSize int,
	callbackURL string,
) Service {
	if tickets == nil {
		panic("tickets repository is nil")
	}
	if events == nil {
		panic("events repository is nil")
	}
	if payments == nil {
		panic("payments repository is nil")
	}
	if provider == nil {
		panic("payments provider is nil")
	}
	return Service{
		codec:       codec,
		tickets:     tickets,
		events:      events,
		payments:    payments,
		provider:    provider,
		qrSize:      qrSize,
		callbackURL: callbackURL,
	}
}

type CreateTicketRequest struct {
	EventID    string `json:"event_id"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	BuyerPhone string `json:"buyer_phone"`
	UserID     string `json:"user_id"`
}

// CreateTicket reserves a PENDING ticket with a signed QR payload and opens a
// payment with the provider. When the provider call fails, the PENDING ticket
// and its payment log are kept so the payment can be retried.
func (s Service) CreateTicket(ctx context.Context, req CreateTicketRequest) (entities.Ticket, entities.PaymentInit, error) {
	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return entities.Ticket{}, entities.PaymentInit{}, err
	}
	if !event.IsActive {
		return entities.Ticket{}, entities.PaymentInit{}, entities.ErrEventNotFound
	}

	ticket := entities.Ticket{
		TicketID:   uuid.NewString(),
		EventID:    req.EventID,
		Status:     entities.TicketStatusPending,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerPhone: req.BuyerPhone,
	}
	if req.UserID != "" {
		ticket.UserID = &req.UserID
	}

	// ticket codes are short, so collisions are rare but possible
	for attempt := 0; ; attempt++ {
		code, err := qr.NewTicketCode()
		if err != nil {
			return entities.Ticket{}, entities.PaymentInit{}, fmt.Errorf("could not generate ticket code: %w", err)
		}

		ticket.TicketCode = code
		ticket.QRPayload = s.codec.Encode(ticket.TicketID, code)
		ticket.QRImage, err = qr.ImageDataURL(ticket.QRPayload, s.qrSize)
		if err != nil {
			return entities.Ticket{}, entities.PaymentInit{}, fmt.Errorf("could not render QR image: %w", err)
		}

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err) && attempt < createRetries {
			continue
		}
		return entities.Ticket{}, entities.PaymentInit{}, err
	}

	monitoring.TicketCreated()

	reference := fmt.Sprintf("TKT-%s-%d", ticket.TicketID, time.Now().Unix())
	err = s.payments.Create(ctx, entities.PaymentLog{
		Reference: reference,
		TicketID:  &ticket.TicketID,
		Amount:    event.Price,
		Provider:  "paystack",
		Status:    entities.PaymentStatusPending,
	})
	if err != nil {
		return ticket, entities.PaymentInit{}, err
	}

	init, err := s.provider.Initialize(ctx, entities.PaymentInitRequest{
		Email:     req.BuyerEmail,
		Amount:    event.Price,
		Reference: reference,
		TicketID:  ticket.TicketID,
		Callback:  s.callbackURL,
	})
	if err != nil {
		return ticket, entities.PaymentInit{}, fmt.Errorf("could not initialize payment: %w", err)
	}

	return ticket, init, nil
}

const (
	reasonTicketNotFound = "Ticket not found in system"
	reasonCancelled      = "Ticket has been cancelled"
	reasonAlreadyUsed    = "Ticket has already been used"
	reasonNotConfirmed   = "Ticket payment not confirmed"
	reasonEventPassed    = "Event has passed"
)

// Verify checks a scanned payload without changing any state: signature and
// expiry first, then the persisted ticket status, then the event date. The
// ticket is looked up by the exact payload string.
func (s Service) Verify(ctx context.Context, payload string) (entities.TicketVerification, error) {
	decoded := s.codec.Decode(payload)
	if !decoded.Valid {
		monitoring.TicketVerification("rejected_payload")
		return entities.TicketVerification{Error: decoded.Reason}, nil
	}

	ticket, err := s.tickets.GetByQRPayload(ctx, payload)
	if errors.Is(err, entities.ErrTicketNotFound) {
		monitoring.TicketVerification("not_found")
		return entities.TicketVerification{Error: reasonTicketNotFound}, nil
	}
	if err != nil {
		return entities.TicketVerification{}, err
	}

	switch ticket.Status {
	case entities.TicketStatusCancelled:
		monitoring.TicketVerification("cancelled")
		return entities.TicketVerification{Error: reasonCancelled}, nil
	case entities.TicketStatusUsed:
		monitoring.TicketVerification("already_used")
		return entities.TicketVerification{Error: reasonAlreadyUsed, UsedAt: ticket.UsedAt}, nil
	case entities.TicketStatusConfirmed:
		// fall through to the event date check
	default:
		monitoring.TicketVerification("not_confirmed")
		return entities.TicketVerification{Error: reasonNotConfirmed}, nil
	}

	event, err := s.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return entities.TicketVerification{}, err
	}

	// scanning on the event day itself is fine, only earlier days count
	if eventDayPassed(event.Date, time.Now()) {
		monitoring.TicketVerification("event_passed")
		return entities.TicketVerification{Error: reasonEventPassed}, nil
	}

	monitoring.TicketVerification("valid")
	return entities.TicketVerification{
		Valid: true,
		Ticket: &entities.VerifiedTicket{
			ID:        ticket.TicketID,
			Code:      ticket.TicketCode,
			BuyerName: ticket.BuyerName,
			Event: entities.VerifiedTicketEvent{
				Title: event.Title,
				Date:  event.Date,
				Time:  event.Time,
				Venue: event.Venue,
			},
		},
	}, nil
}

// eventDayPassed compares calendar days in server-local time, so a scan
// late on the event evening is not refused just because UTC already
// rolled over.
func eventDayPassed(eventDate, now time.Time) bool {
	ey, em, ed := eventDate.In(time.Local).Date()
	ny, nm, nd := now.In(time.Local).Date()
	eventDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.Local)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.Local)
	return eventDay.Before(today)
}

func (s Service) MarkUsed(ctx context.Context, ticketID string) (entities.Ticket, error) {
	return s.tickets.MarkUsed(ctx, ticketID)
}

func (s Service) Cancel(ctx context.Context, ticketID string) (entities.Ticket, error) {
	return s.tickets.Cancel(ctx, ticketID)
}

func (s Service) LinkToUser(ctx context.Context, email, userID string) (int64, error) {
	return s.tickets.LinkToUser(ctx, email, userID)
}

// PaymentSucceeded applies a successful provider charge: the payment log is
// marked SUCCESS and the linked ticket confirmed. Unknown references are
// logged and acknowledged so the provider stops retrying.
func (s Service) PaymentSucceeded(ctx context.Context, reference string, paidAt time.Time, channel string, raw json.RawMessage) error {
	paymentLog, err := s.payments.MarkSuccess(ctx, reference, paidAt, channel, raw)
	if errors.Is(err, entities.ErrPaymentLogNotFound) {
		log.FromContext(ctx).WithField("reference", reference).
			Warn("Received successful charge for unknown payment reference")
		return nil
	}
	if err != nil {
		return err
	}

	if paymentLog.TicketID == nil {
		return nil
	}

	_, err = s.tickets.Confirm(ctx, *paymentLog.TicketID)
	if errors.Is(err, entities.ErrTicketNotFound) {
		log.FromContext(ctx).WithField("ticket_id", *paymentLog.TicketID).
			Warn("Payment references a ticket that no longer exists")
		return nil
	}
	return err
}

// PaymentFailed marks the payment log FAILED and cancels the linked ticket,
// freeing its capacity slot.
func (s Service) PaymentFailed(ctx context.Context, reference string, raw json.RawMessage) error {
	paymentLog, err := s.payments.MarkFailed(ctx, reference, raw)
	if errors.Is(err, entities.ErrPaymentLogNotFound) {
		log.FromContext(ctx).WithField("reference", reference).
			Warn("Received failed charge for unknown payment reference")
		return nil
	}
	if err != nil {
		return err
	}

	if paymentLog.TicketID == nil {
		return nil
	}

	_, err = s.tickets.Cancel(ctx, *paymentLog.TicketID)
	if errors.Is(err, entities.ErrTicketNotFound) || errors.Is(err, entities.ErrTicketAlreadyUsed) {
		log.FromContext(ctx).WithField("ticket_id", *paymentLog.TicketID).WithError(err).
			Warn("Could not cancel ticket for failed payment")
		return nil
	}
	return err
}
