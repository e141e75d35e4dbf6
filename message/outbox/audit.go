package outbox

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

// auditPublisherDecorator archives every outgoing event into the event_log
// table, inside the same transaction that stores the outbox row.
type auditPublisherDecorator struct {
	tx   *sqlx.Tx
	next message.Publisher
}

func (a auditPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		eventName := msg.Metadata.Get("name")
		if eventName == "" {
			eventName = topic
		}

		_, err := a.tx.Exec(`
			INSERT INTO event_log (event_id, published_at, event_name, event_payload)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (event_id) DO NOTHING`,
			msg.UUID, time.Now().UTC(), eventName, []byte(msg.Payload),
		)
		if err != nil {
			return fmt.Errorf("could not archive event %s: %w", msg.UUID, err)
		}
	}

	return a.next.Publish(topic, messages...)
}

func (a auditPublisherDecorator) Close() error {
	return a.next.Close()
}
