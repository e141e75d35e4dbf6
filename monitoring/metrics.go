package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Tickets created at checkout",
		},
	)

	ticketVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_verifications_total",
			Help: "QR verification attempts by outcome",
		},
		[]string{"result"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Payment provider webhook deliveries by event type",
		},
		[]string{"event"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Outbound emails by kind and delivery outcome",
		},
		[]string{"kind", "status"},
	)
)

func TicketCreated() {
	ticketsCreated.Inc()
}

// TicketVerification records a verification outcome; result is "valid" or
// a fixed failure category.
func TicketVerification(result string) {
	ticketVerifications.WithLabelValues(result).Inc()
}

func WebhookEvent(event string) {
	webhookEvents.WithLabelValues(event).Inc()
}

func EmailSent(kind string, delivered bool) {
	status := "delivered"
	if !delivered {
		status = "failed"
	}
	emailsSent.WithLabelValues(kind, status).Inc()
}
