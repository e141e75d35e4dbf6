package tickets_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"danceschool/api"
	"danceschool/entities"
	"danceschool/qr"
	"danceschool/tickets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters-long"

type ticketsRepoMock struct {
	byID map[string]*entities.Ticket
}

func newTicketsRepoMock() *ticketsRepoMock {
	return &ticketsRepoMock{byID: map[string]*entities.Ticket{}}
}

func (m *ticketsRepoMock) Create(ctx context.Context, ticket entities.Ticket) error {
	m.byID[ticket.TicketID] = &ticket
	return nil
}

func (m *ticketsRepoMock) Confirm(ctx context.Context, ticketID string) (entities.Ticket, error) {
	ticket, ok := m.byID[ticketID]
	if !ok {
		return entities.Ticket{}, entities.ErrTicketNotFound
	}
	// only PENDING transitions; USED and CANCELLED are terminal
	if ticket.Status == entities.TicketStatusPending {
		ticket.Status = entities.TicketStatusConfirmed
		if ticket.IssuedAt == nil {
			now := time.Now()
			ticket.IssuedAt = &now
		}
	}
	return *ticket, nil
}

func (m *ticketsRepoMock) MarkUsed(ctx context.Context, ticketID string) (entities.Ticket, error) {
	ticket, ok := m.byID[ticketID]
	if !ok {
		return entities.Ticket{}, entities.ErrTicketNotFound
	}
	switch ticket.Status {
	case entities.TicketStatusConfirmed:
		now := time.Now()
		ticket.Status = entities.TicketStatusUsed
		ticket.UsedAt = &now
		return *ticket, nil
	case entities.TicketStatusUsed:
		return entities.Ticket{}, entities.ErrTicketAlreadyUsed
	default:
		return entities.Ticket{}, entities.ErrTicketNotConfirmed
	}
}

func (m *ticketsRepoMock) Cancel(ctx context.Context, ticketID string) (entities.Ticket, error) {
	ticket, ok := m.byID[ticketID]
	if !ok {
		return entities.Ticket{}, entities.ErrTicketNotFound
	}
	if ticket.Status == entities.TicketStatusUsed {
		return entities.Ticket{}, entities.ErrTicketAlreadyUsed
	}
	ticket.Status = entities.TicketStatusCancelled
	return *ticket, nil
}

func (m *ticketsRepoMock) GetByID(ctx context.Context, ticketID string) (entities.Ticket, error) {
	ticket, ok := m.byID[ticketID]
	if !ok {
		return entities.Ticket{}, entities.ErrTicketNotFound
	}
	return *ticket, nil
}

func (m *ticketsRepoMock) GetByQRPayload(ctx context.Context, qrPayload string) (entities.Ticket, error) {
	for _, ticket := range m.byID {
		if ticket.QRPayload == qrPayload {
			return *ticket, nil
		}
	}
	return entities.Ticket{}, entities.ErrTicketNotFound
}

func (m *ticketsRepoMock) LinkToUser(ctx context.Context, email, userID string) (int64, error) {
	linked := int64(0)
	for _, ticket := range m.byID {
		if ticket.BuyerEmail == email && ticket.UserID == nil {
			ticket.UserID = &userID
			linked++
		}
	}
	return linked, nil
}

type eventsRepoMock struct {
	byID map[string]entities.DanceEvent
}

func (m *eventsRepoMock) GetByID(ctx context.Context, eventID string) (entities.DanceEvent, error) {
	event, ok := m.byID[eventID]
	if !ok {
		return entities.DanceEvent{}, entities.ErrEventNotFound
	}
	return event, nil
}

type paymentsRepoMock struct {
	byReference map[string]*entities.PaymentLog
}

func newPaymentsRepoMock() *paymentsRepoMock {
	return &paymentsRepoMock{byReference: map[string]*entities.PaymentLog{}}
}

func (m *paymentsRepoMock) Create(ctx context.Context, log entities.PaymentLog) error {
	if _, ok := m.byReference[log.Reference]; ok {
		return nil
	}
	m.byReference[log.Reference] = &log
	return nil
}

func (m *paymentsRepoMock) MarkSuccess(ctx context.Context, reference string, paidAt time.Time, channel string, raw json.RawMessage) (entities.PaymentLog, error) {
	log, ok := m.byReference[reference]
	if !ok {
		return entities.PaymentLog{}, entities.ErrPaymentLogNotFound
	}
	log.Status = entities.PaymentStatusSuccess
	log.PaidAt = &paidAt
	log.Channel = channel
	log.RawPayload = raw
	return *log, nil
}

func (m *paymentsRepoMock) MarkFailed(ctx context.Context, reference string, raw json.RawMessage) (entities.PaymentLog, error) {
	log, ok := m.byReference[reference]
	if !ok {
		return entities.PaymentLog{}, entities.ErrPaymentLogNotFound
	}
	log.Status = entities.PaymentStatusFailed
	log.RawPayload = raw
	return *log, nil
}

type fixture struct {
	service  tickets.Service
	codec    qr.Codec
	tickets  *ticketsRepoMock
	events   *eventsRepoMock
	payments *paymentsRepoMock
	provider *api.PaystackMock
}

func newFixture(t *testing.T, events ...entities.DanceEvent) fixture {
	t.Helper()

	codec := qr.NewCodec(qr.NewSigner(testSecret))
	ticketsRepo := newTicketsRepoMock()
	eventsRepo := &eventsRepoMock{byID: map[string]entities.DanceEvent{}}
	for _, event := range events {
		eventsRepo.byID[event.EventID] = event
	}
	paymentsRepo := newPaymentsRepoMock()
	provider := &api.PaystackMock{}

	return fixture{
		service:  tickets.NewService(codec, ticketsRepo, eventsRepo, paymentsRepo, provider, 300, "http://localhost:3000/payment/callback"),
		codec:    codec,
		tickets:  ticketsRepo,
		events:   eventsRepo,
		payments: paymentsRepo,
		provider: provider,
	}
}

func upcomingEvent() entities.DanceEvent {
	return entities.DanceEvent{
		EventID:  "5f3c1f8e-0000-4000-8000-000000000001",
		Title:    "Salsa Night Showcase",
		Date:     time.Now().Add(72 * time.Hour),
		Time:     "19:00",
		Venue:    "Main Studio",
		Capacity: 50,
		Price:    entities.Money{Amount: "150.00", Currency: "NGN"},
		IsActive: true,
	}
}

func TestCreateTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)

	ticket, payment, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    event.EventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
		BuyerPhone: "+2348000000000",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TicketStatusPending, ticket.Status)
	assert.Regexp(t, `^[0-9A-F]{12}$`, ticket.TicketCode)
	assert.True(t, strings.HasPrefix(ticket.QRImage, "data:image/png;base64,"))

	decoded := f.codec.Decode(ticket.QRPayload)
	require.True(t, decoded.Valid)
	assert.Equal(t, ticket.TicketID, decoded.TicketID)
	assert.Equal(t, ticket.TicketCode, decoded.TicketCode)

	require.Len(t, f.provider.InitializedPayments, 1)
	init := f.provider.InitializedPayments[0]
	assert.Equal(t, "ada@example.com", init.Email)
	assert.Equal(t, event.Price, init.Amount)
	assert.True(t, strings.HasPrefix(init.Reference, "TKT-"+ticket.TicketID))
	assert.Equal(t, init.Reference, payment.Reference)

	log, ok := f.payments.byReference[init.Reference]
	require.True(t, ok)
	require.NotNil(t, log.TicketID)
	assert.Equal(t, ticket.TicketID, *log.TicketID)
	assert.Equal(t, entities.PaymentStatusPending, log.Status)
}

func TestCreateTicketInactiveEvent(t *testing.T) {
	event := upcomingEvent()
	event.IsActive = false
	f := newFixture(t, event)

	_, _, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    event.EventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
	})
	assert.ErrorIs(t, err, entities.ErrEventNotFound)
}

func createConfirmedTicket(t *testing.T, f fixture, eventID string) entities.Ticket {
	t.Helper()

	ticket, _, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    eventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
	})
	require.NoError(t, err)

	confirmed, err := f.tickets.Confirm(context.Background(), ticket.TicketID)
	require.NoError(t, err)
	return confirmed
}

func TestVerifyConfirmedTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)
	ticket := createConfirmedTicket(t, f, event.EventID)

	verification, err := f.service.Verify(context.Background(), ticket.QRPayload)
	require.NoError(t, err)

	assert.True(t, verification.Valid)
	assert.Empty(t, verification.Error)
	require.NotNil(t, verification.Ticket)
	assert.Equal(t, ticket.TicketID, verification.Ticket.ID)
	assert.Equal(t, ticket.TicketCode, verification.Ticket.Code)
	assert.Equal(t, event.Title, verification.Ticket.Event.Title)
	assert.Equal(t, event.Venue, verification.Ticket.Event.Venue)
}

func TestVerifyGarbagePayload(t *testing.T) {
	f := newFixture(t)

	verification, err := f.service.Verify(context.Background(), "not a payload")
	require.NoError(t, err)

	assert.False(t, verification.Valid)
	assert.Equal(t, "Invalid QR code format", verification.Error)
}

func TestVerifyUnknownTicket(t *testing.T) {
	f := newFixture(t)

	// well-formed and correctly signed, but never persisted
	payload := f.codec.Encode("2d1db8f0-0000-4000-8000-00000000aaaa", "A1B2C3D4E5F6")

	verification, err := f.service.Verify(context.Background(), payload)
	require.NoError(t, err)

	assert.False(t, verification.Valid)
	assert.Equal(t, "Ticket not found in system", verification.Error)
}

func TestVerifyPendingTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)

	ticket, _, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    event.EventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
	})
	require.NoError(t, err)

	verification, err := f.service.Verify(context.Background(), ticket.QRPayload)
	require.NoError(t, err)

	assert.False(t, verification.Valid)
	assert.Equal(t, "Ticket payment not confirmed", verification.Error)
}

func TestVerifyCancelledTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)
	ticket := createConfirmedTicket(t, f, event.EventID)

	_, err := f.service.Cancel(context.Background(), ticket.TicketID)
	require.NoError(t, err)

	verification, err := f.service.Verify(context.Background(), ticket.QRPayload)
	require.NoError(t, err)

	assert.False(t, verification.Valid)
	assert.Equal(t, "Ticket has been cancelled", verification.Error)
}

func TestVerifyUsedTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)
	ticket := createConfirmedTicket(t, f, event.EventID)

	used, err := f.service.MarkUsed(context.Background(), ticket.TicketID)
	require.NoError(t, err)
	require.NotNil(t, used.UsedAt)

	verification, err := f.service.Verify(context.Background(), ticket.QRPayload)
	require.NoError(t, err)

	assert.False(t, verification.Valid)
	assert.Equal(t, "Ticket has already been used", verification.Error)
	require.NotNil(t, verification.UsedAt)
	assert.WithinDuration(t, *used.UsedAt, *verification.UsedAt, time.Second)
}

func TestVerifyEventPassed(t *testing.T) {
	event := upcomingEvent()
	event.Date = time.Now().Add(-48 * time.Hour)
	f := newFixture(t, event)
	ticket := createConfirmedTicket(t, f, event.EventID)

	verification, err := f.service.Verify(context.Background(), ticket.QRPayload)
	require.NoError(t, err)

	assert.False(t, verification.Valid)
	assert.Equal(t, "Event has passed", verification.Error)
}

func TestVerifySameDayEvent(t *testing.T) {
	event := upcomingEvent()
	// the event day itself still admits, whatever the local timezone
	event.Date = time.Now()
	f := newFixture(t, event)
	ticket := createConfirmedTicket(t, f, event.EventID)

	verification, err := f.service.Verify(context.Background(), ticket.QRPayload)
	require.NoError(t, err)

	assert.True(t, verification.Valid)
}

func TestMarkUsedTwice(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)
	ticket := createConfirmedTicket(t, f, event.EventID)

	_, err := f.service.MarkUsed(context.Background(), ticket.TicketID)
	require.NoError(t, err)

	_, err = f.service.MarkUsed(context.Background(), ticket.TicketID)
	assert.ErrorIs(t, err, entities.ErrTicketAlreadyUsed)
}

func TestPaymentSucceededConfirmsTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)

	ticket, payment, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    event.EventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
	})
	require.NoError(t, err)

	err = f.service.PaymentSucceeded(context.Background(), payment.Reference, time.Now(), "card", json.RawMessage(`{}`))
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, entities.TicketStatusConfirmed, stored.Status)
	assert.Equal(t, entities.PaymentStatusSuccess, f.payments.byReference[payment.Reference].Status)
}

func TestPaymentRedeliveryAfterAdmission(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)

	ticket, payment, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    event.EventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
	})
	require.NoError(t, err)

	err = f.service.PaymentSucceeded(context.Background(), payment.Reference, time.Now(), "card", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = f.service.MarkUsed(context.Background(), ticket.TicketID)
	require.NoError(t, err)

	// providers redeliver webhooks; the replay must not resurrect the ticket
	err = f.service.PaymentSucceeded(context.Background(), payment.Reference, time.Now(), "card", json.RawMessage(`{}`))
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, entities.TicketStatusUsed, stored.Status)

	_, err = f.service.MarkUsed(context.Background(), ticket.TicketID)
	assert.ErrorIs(t, err, entities.ErrTicketAlreadyUsed)
}

func TestPaymentSucceededUnknownReference(t *testing.T) {
	f := newFixture(t)

	// unknown references are acknowledged, not retried
	err := f.service.PaymentSucceeded(context.Background(), "TKT-unknown-123", time.Now(), "card", nil)
	assert.NoError(t, err)
}

func TestPaymentFailedCancelsTicket(t *testing.T) {
	event := upcomingEvent()
	f := newFixture(t, event)

	ticket, payment, err := f.service.CreateTicket(context.Background(), tickets.CreateTicketRequest{
		EventID:    event.EventID,
		BuyerName:  "Ada Obi",
		BuyerEmail: "ada@example.com",
	})
	require.NoError(t, err)

	err = f.service.PaymentFailed(context.Background(), payment.Reference, json.RawMessage(`{}`))
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, entities.TicketStatusCancelled, stored.Status)
	assert.Equal(t, entities.PaymentStatusFailed, f.payments.byReference[payment.Reference].Status)
}
