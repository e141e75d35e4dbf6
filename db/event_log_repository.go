package db

import (
	"context"
	"fmt"

	"danceschool/entities"
)

// EventLogRepository reads the audit table every published domain event is
// archived into (writes happen inside the outbox transaction).
type EventLogRepository struct {
	db *DB
}

func NewEventLogRepository(db *DB) EventLogRepository {
	if db == nil {
		panic("db is nil")
	}
	return EventLogRepository{db: db}
}

func (er EventLogRepository) List(ctx context.Context, limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var events []entities.AuditEvent
	err := er.db.Conn.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload
		FROM event_log
		ORDER BY published_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list audit events: %w", err)
	}
	return events, nil
}
