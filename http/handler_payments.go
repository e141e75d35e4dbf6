package http

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"danceschool/entities"
	"danceschool/monitoring"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
)

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string    `json:"reference"`
		PaidAt    time.Time `json:"paid_at"`
		Channel   string    `json:"channel"`
	} `json:"data"`
}

// PostPaymentWebhook receives provider callbacks. The signature is an
// HMAC-SHA512 of the raw body, so the body is read before any decoding.
// Unknown event types and unknown references are acknowledged with 200 to
// stop the provider from retrying.
func (h Handler) PostPaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("failed reading webhook body: %w", err)
	}

	signature := c.Request().Header.Get("X-Paystack-Signature")
	if !validWebhookSignature(body, signature, h.webhookSecretKey) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}

	ctx := c.Request().Context()
	monitoring.WebhookEvent(payload.Event)

	switch payload.Event {
	case "charge.success":
		paidAt := payload.Data.PaidAt
		if paidAt.IsZero() {
			paidAt = time.Now()
		}
		err = h.ticketsService.PaymentSucceeded(ctx, payload.Data.Reference, paidAt, payload.Data.Channel, body)
	case "charge.failed":
		err = h.ticketsService.PaymentFailed(ctx, payload.Data.Reference, body)
	default:
		log.FromContext(ctx).WithField("event", payload.Event).Info("Ignoring unhandled webhook event")
	}
	if err != nil {
		return fmt.Errorf("failed handling %s webhook: %w", payload.Event, err)
	}

	return c.NoContent(http.StatusOK)
}

func validWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h Handler) GetPayments(c echo.Context) error {
	var status *entities.PaymentStatus
	if s := c.QueryParam("status"); s != "" {
		ps := entities.PaymentStatus(s)
		status = &ps
	}

	logs, err := h.paymentRepo.List(c.Request().Context(), status)
	if err != nil {
		return fmt.Errorf("failed listing payments: %w", err)
	}

	return c.JSON(http.StatusOK, logs)
}

func (h Handler) PostRefundPayment(c echo.Context) error {
	reference := c.Param("reference")

	// the payment must exist before a refund command is queued
	if _, err := h.paymentRepo.GetByReference(c.Request().Context(), reference); err != nil {
		return mapDomainError(err)
	}

	cmd := entities.RefundPayment{
		Header:    entities.NewEventHeaderWithIdempotencyKey(reference),
		Reference: reference,
	}
	if err := h.cmdBus.Send(c.Request().Context(), cmd); err != nil {
		return fmt.Errorf("failed to send RefundPayment command: %w", err)
	}

	return c.NoContent(http.StatusAccepted)
}

func (h Handler) GetEventLog(c echo.Context) error {
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if _, err := fmt.Sscanf(l, "%d", &limit); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
	}

	events, err := h.eventLogRepo.List(c.Request().Context(), limit)
	if err != nil {
		return fmt.Errorf("failed listing event log: %w", err)
	}

	return c.JSON(http.StatusOK, events)
}
