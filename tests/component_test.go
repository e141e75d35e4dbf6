package tests

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"danceschool/api"
	"danceschool/config"
	"danceschool/db"
	"danceschool/entities"
	"danceschool/message"
	"danceschool/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_component_test"

func TestComponent(t *testing.T) {
	postgresURL := os.Getenv("POSTGRES_URL")
	redisAddr := os.Getenv("REDIS_ADDR")
	if postgresURL == "" || redisAddr == "" {
		t.Skip("POSTGRES_URL and REDIS_ADDR not set, skipping component test")
	}

	cfg := config.Config{
		Port:         "8080",
		PostgresURL:  postgresURL,
		RedisAddr:    redisAddr,
		FrontendURL:  "http://localhost:3000",
		TicketSecret: "component-test-secret-32-characters!",
		QRSize:       128,
		Paystack: config.PaystackConfig{
			WebhookSecret: webhookSecret,
		},
	}

	conn, err := db.NewDBConn(cfg.PostgresURL)
	require.NoError(t, err)
	defer conn.Close()
	conn.MigrateSchema()

	rdb := message.NewRedisClient(cfg.RedisAddr)
	defer rdb.Close()

	paystackService := &api.PaystackMock{}
	mailerService := &api.MailerMock{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		svc := service.New(cfg, rdb, &conn, paystackService, mailerService)
		assert.NoError(t, svc.Run(ctx))
	}()
	waitForHttpServer(t)

	var created entities.DanceEventCreateResponse
	resp := postJSON(t, "/events", map[string]any{
		"title":    "Kizomba Night",
		"date":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"time":     "21:00",
		"venue":    "Main Hall",
		"capacity": 2,
		"price":    entities.Money{Amount: "200.00", Currency: "NGN"},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var checkout struct {
		Ticket  entities.Ticket      `json:"ticket"`
		Payment entities.PaymentInit `json:"payment"`
	}
	resp = postJSON(t, "/tickets", map[string]string{
		"event_id":    created.EventID,
		"buyer_name":  "Ada Obi",
		"buyer_email": "ada@example.com",
	}, &checkout)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, entities.TicketStatusPending, checkout.Ticket.Status)
	require.NotEmpty(t, checkout.Payment.Reference)

	// before payment the ticket does not admit
	var verification entities.TicketVerification
	resp = postJSON(t, "/tickets/verify", map[string]string{"qr_payload": checkout.Ticket.QRPayload}, &verification)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, verification.Valid)
	assert.Equal(t, "Ticket payment not confirmed", verification.Error)

	resp = sendWebhook(t, webhookSecret, map[string]any{
		"event": "charge.success",
		"data": map[string]any{
			"reference": checkout.Payment.Reference,
			"paid_at":   time.Now().Format(time.RFC3339),
			"channel":   "card",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assertTicketStatus(t, checkout.Ticket.TicketID, entities.TicketStatusConfirmed)
	assertTicketEmailSent(t, mailerService, checkout.Ticket.TicketID)

	resp = postJSON(t, "/tickets/verify", map[string]string{"qr_payload": checkout.Ticket.QRPayload}, &verification)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, verification.Valid)
	require.NotNil(t, verification.Ticket)
	assert.Equal(t, "Kizomba Night", verification.Ticket.Event.Title)

	resp = postJSON(t, "/tickets/"+checkout.Ticket.TicketID+"/use", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// second admission attempt must lose
	resp = postJSON(t, "/tickets/"+checkout.Ticket.TicketID+"/use", nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, "/tickets/verify", map[string]string{"qr_payload": checkout.Ticket.QRPayload}, &verification)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, verification.Valid)
	assert.Equal(t, "Ticket has already been used", verification.Error)
	assert.NotNil(t, verification.UsedAt)

	// unknown references are acknowledged so the provider stops retrying
	resp = sendWebhook(t, webhookSecret, map[string]any{
		"event": "charge.success",
		"data":  map[string]any{"reference": "TKT-unknown-0"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = sendWebhook(t, "wrong-secret", map[string]any{
		"event": "charge.success",
		"data":  map[string]any{"reference": checkout.Payment.Reference},
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func assertTicketStatus(t *testing.T, ticketID string, want entities.TicketStatus) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(ct *assert.CollectT) {
			var ticket entities.Ticket
			resp := getJSON(t, "/tickets/"+ticketID, &ticket)
			if !assert.Equal(ct, http.StatusOK, resp.StatusCode) {
				return
			}
			assert.Equal(ct, want, ticket.Status)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertTicketEmailSent(t *testing.T, mailer *api.MailerMock, ticketID string) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(ct *assert.CollectT) {
			for _, email := range mailer.TicketEmails {
				if email.TicketID == ticketID {
					assert.Equal(ct, "ada@example.com", email.To)
					assert.Equal(ct, "Kizomba Night", email.EventTitle)
					return
				}
			}
			assert.Fail(ct, "ticket email not sent yet")
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}
