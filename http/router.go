package http

import (
	"net/http"

	libHttp "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func NewHttpRouter(
	cmdBus *cqrs.CommandBus,
	ticketsService TicketsService,
	ticketRepo TicketRepository,
	eventRepo EventRepository,
	paymentRepo PaymentRepository,
	eventLogRepo EventLogRepository,
	webhookSecretKey string,
) *echo.Echo {
	e := libHttp.NewEcho()
	e.Use(otelecho.Middleware("danceschool"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler := Handler{
		cmdBus:           cmdBus,
		ticketsService:   ticketsService,
		ticketRepo:       ticketRepo,
		eventRepo:        eventRepo,
		paymentRepo:      paymentRepo,
		eventLogRepo:     eventLogRepo,
		webhookSecretKey: webhookSecretKey,
	}

	e.POST("/events", handler.PostEvent)
	e.GET("/events", handler.GetEvents)
	e.GET("/events/:event_id", handler.GetEventByID)
	e.PUT("/events/:event_id", handler.PutEvent)
	e.DELETE("/events/:event_id", handler.DeleteEvent)
	e.GET("/events/:event_id/tickets", handler.GetEventTickets)

	e.POST("/tickets", handler.PostTicket)
	e.GET("/tickets", handler.GetTickets)
	e.GET("/tickets/:ticket_id", handler.GetTicketByID)
	e.POST("/tickets/verify", handler.PostVerifyTicket)
	e.POST("/tickets/:ticket_id/use", handler.PostUseTicket)
	e.POST("/tickets/:ticket_id/cancel", handler.PostCancelTicket)
	e.POST("/tickets/link", handler.PostLinkTickets)

	e.POST("/payments/webhook", handler.PostPaymentWebhook)
	e.GET("/payments", handler.GetPayments)
	e.POST("/payments/:reference/refund", handler.PostRefundPayment)

	e.GET("/ops/event-log", handler.GetEventLog)

	return e
}
