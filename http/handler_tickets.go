package http

import (
	"fmt"
	"net/http"

	"danceschool/entities"
	"danceschool/tickets"

	"github.com/labstack/echo/v4"
)

type createTicketResponse struct {
	Ticket  entities.Ticket      `json:"ticket"`
	Payment entities.PaymentInit `json:"payment"`
}

func (h Handler) PostTicket(c echo.Context) error {
	var request tickets.CreateTicketRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.EventID == "" || request.BuyerName == "" || request.BuyerEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id, buyer_name and buyer_email are required")
	}

	ticket, payment, err := h.ticketsService.CreateTicket(c.Request().Context(), request)
	if err != nil {
		// the ticket stays PENDING when the provider call fails
		if ticket.TicketID != "" {
			return echo.NewHTTPError(http.StatusBadGateway, "could not initialize payment")
		}
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, createTicketResponse{
		Ticket:  ticket,
		Payment: payment,
	})
}

type verifyTicketRequest struct {
	QRPayload string `json:"qr_payload"`
}

func (h Handler) PostVerifyTicket(c echo.Context) error {
	var request verifyTicketRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.QRPayload == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "qr_payload is required")
	}

	verification, err := h.ticketsService.Verify(c.Request().Context(), request.QRPayload)
	if err != nil {
		return fmt.Errorf("failed verifying ticket: %w", err)
	}

	return c.JSON(http.StatusOK, verification)
}

func (h Handler) PostUseTicket(c echo.Context) error {
	ticketID := c.Param("ticket_id")

	ticket, err := h.ticketsService.MarkUsed(c.Request().Context(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, ticket)
}

func (h Handler) PostCancelTicket(c echo.Context) error {
	ticketID := c.Param("ticket_id")

	ticket, err := h.ticketsService.Cancel(c.Request().Context(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, ticket)
}

type linkTicketsRequest struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

type linkTicketsResponse struct {
	LinkedTickets int64 `json:"linked_tickets"`
}

func (h Handler) PostLinkTickets(c echo.Context) error {
	var request linkTicketsRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Email == "" || request.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and user_id are required")
	}

	linked, err := h.ticketsService.LinkToUser(c.Request().Context(), request.Email, request.UserID)
	if err != nil {
		return fmt.Errorf("failed linking tickets: %w", err)
	}

	return c.JSON(http.StatusOK, linkTicketsResponse{LinkedTickets: linked})
}

func (h Handler) GetTicketByID(c echo.Context) error {
	ticket, err := h.ticketRepo.GetByID(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, ticket)
}

// GetTickets lists tickets for a buyer email, or looks one up by code.
func (h Handler) GetTickets(c echo.Context) error {
	if code := c.QueryParam("code"); code != "" {
		ticket, err := h.ticketRepo.GetByCode(c.Request().Context(), code)
		if err != nil {
			return mapDomainError(err)
		}
		return c.JSON(http.StatusOK, []entities.Ticket{ticket})
	}

	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email or code query parameter is required")
	}

	result, err := h.ticketRepo.ListByBuyerEmail(c.Request().Context(), email)
	if err != nil {
		return fmt.Errorf("failed getting tickets: %w", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h Handler) GetEventTickets(c echo.Context) error {
	result, err := h.ticketRepo.ListByEvent(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return fmt.Errorf("failed getting event tickets: %w", err)
	}

	return c.JSON(http.StatusOK, result)
}
