package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"danceschool/entities"
)

const eventColumns = `event_id, title, description, date, time, venue, capacity,
	price_amount AS "price.amount", price_currency AS "price.currency",
	image_url, is_active, created_at`

const soldTicketsExpr = `(
	SELECT count(*) FROM tickets t
	WHERE t.event_id = events.event_id AND t.status IN ('PENDING', 'CONFIRMED')
) AS sold_tickets`

type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) EventRepository {
	if db == nil {
		panic("db is nil")
	}
	return EventRepository{db: db}
}

func (er EventRepository) Create(ctx context.Context, event entities.DanceEvent) (entities.DanceEventCreateResponse, error) {
	var eventID string
	err := er.db.Conn.QueryRowContext(ctx, `
		INSERT INTO events (title, description, date, time, venue, capacity, price_amount, price_currency, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING event_id`,
		event.Title, event.Description, event.Date, event.Time, event.Venue,
		event.Capacity, event.Price.Amount, event.Price.Currency, event.ImageURL,
	).Scan(&eventID)
	if err != nil {
		return entities.DanceEventCreateResponse{}, fmt.Errorf("could not save event: %w", err)
	}

	return entities.DanceEventCreateResponse{EventID: eventID}, nil
}

func (er EventRepository) GetByID(ctx context.Context, eventID string) (entities.DanceEvent, error) {
	var event entities.DanceEvent
	err := er.db.Conn.GetContext(ctx, &event, `
		SELECT `+eventColumns+`, `+soldTicketsExpr+`
		FROM events
		WHERE event_id = $1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.DanceEvent{}, entities.ErrEventNotFound
	}
	if err != nil {
		return entities.DanceEvent{}, fmt.Errorf("could not get event: %w", err)
	}

	event.AvailableTickets = event.Capacity - event.SoldTickets
	return event, nil
}

func (er EventRepository) List(ctx context.Context, upcomingOnly bool) ([]entities.DanceEvent, error) {
	query := `SELECT ` + eventColumns + `, ` + soldTicketsExpr + ` FROM events WHERE is_active`
	if upcomingOnly {
		query += ` AND date >= now()`
	}
	query += ` ORDER BY date ASC`

	var events []entities.DanceEvent
	err := er.db.Conn.SelectContext(ctx, &events, query)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}

	for i := range events {
		events[i].AvailableTickets = events[i].Capacity - events[i].SoldTickets
	}
	return events, nil
}

func (er EventRepository) Update(ctx context.Context, event entities.DanceEvent) (entities.DanceEvent, error) {
	res, err := er.db.Conn.ExecContext(ctx, `
		UPDATE events
		SET title = $2, description = $3, date = $4, time = $5, venue = $6,
		    capacity = $7, price_amount = $8, price_currency = $9, image_url = $10, is_active = $11
		WHERE event_id = $1`,
		event.EventID, event.Title, event.Description, event.Date, event.Time, event.Venue,
		event.Capacity, event.Price.Amount, event.Price.Currency, event.ImageURL, event.IsActive,
	)
	if err != nil {
		return entities.DanceEvent{}, fmt.Errorf("could not update event: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return entities.DanceEvent{}, entities.ErrEventNotFound
	}

	return er.GetByID(ctx, event.EventID)
}

// Delete refuses while PENDING or CONFIRMED tickets are outstanding;
// those tickets must be cancelled first.
func (er EventRepository) Delete(ctx context.Context, eventID string) (err error) {
	tx, err := er.db.Conn.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	outstanding := 0
	err = tx.GetContext(ctx, &outstanding, `
		SELECT count(*) FROM tickets
		WHERE event_id = $1 AND status IN ('PENDING', 'CONFIRMED')
	`, eventID)
	if err != nil {
		return fmt.Errorf("could not count outstanding tickets: %w", err)
	}
	if outstanding > 0 {
		return entities.ErrEventHasTickets
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("could not delete event: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return entities.ErrEventNotFound
	}

	return nil
}
