package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"danceschool/entities"
	"danceschool/tickets"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	cmdBus           *cqrs.CommandBus
	ticketsService   TicketsService
	ticketRepo       TicketRepository
	eventRepo        EventRepository
	paymentRepo      PaymentRepository
	eventLogRepo     EventLogRepository
	webhookSecretKey string
}

type TicketsService interface {
	CreateTicket(ctx context.Context, req tickets.CreateTicketRequest) (entities.Ticket, entities.PaymentInit, error)
	Verify(ctx context.Context, payload string) (entities.TicketVerification, error)
	MarkUsed(ctx context.Context, ticketID string) (entities.Ticket, error)
	Cancel(ctx context.Context, ticketID string) (entities.Ticket, error)
	LinkToUser(ctx context.Context, email, userID string) (int64, error)
	PaymentSucceeded(ctx context.Context, reference string, paidAt time.Time, channel string, raw json.RawMessage) error
	PaymentFailed(ctx context.Context, reference string, raw json.RawMessage) error
}

type TicketRepository interface {
	GetByID(ctx context.Context, ticketID string) (entities.Ticket, error)
	GetByCode(ctx context.Context, ticketCode string) (entities.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]entities.Ticket, error)
	ListByBuyerEmail(ctx context.Context, email string) ([]entities.Ticket, error)
}

type EventRepository interface {
	Create(ctx context.Context, event entities.DanceEvent) (entities.DanceEventCreateResponse, error)
	GetByID(ctx context.Context, eventID string) (entities.DanceEvent, error)
	List(ctx context.Context, upcomingOnly bool) ([]entities.DanceEvent, error)
	Update(ctx context.Context, event entities.DanceEvent) (entities.DanceEvent, error)
	Delete(ctx context.Context, eventID string) error
}

type PaymentRepository interface {
	GetByReference(ctx context.Context, reference string) (entities.PaymentLog, error)
	List(ctx context.Context, status *entities.PaymentStatus) ([]entities.PaymentLog, error)
}

type EventLogRepository interface {
	List(ctx context.Context, limit int) ([]entities.AuditEvent, error)
}

// mapDomainError turns sentinel errors into HTTP status codes; anything else
// bubbles up as a 500.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, entities.ErrEventNotFound),
		errors.Is(err, entities.ErrTicketNotFound),
		errors.Is(err, entities.ErrPaymentLogNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrEventSoldOut),
		errors.Is(err, entities.ErrEventHasTickets),
		errors.Is(err, entities.ErrTicketAlreadyUsed),
		errors.Is(err, entities.ErrTicketNotConfirmed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
