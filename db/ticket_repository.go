package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"danceschool/entities"
	"danceschool/message/event"
	"danceschool/message/outbox"
)

const ticketColumns = `ticket_id, event_id, ticket_code, qr_payload, qr_image, status,
	buyer_name, buyer_email, buyer_phone, user_id, issued_at, used_at, created_at`

type TicketRepository struct {
	db *DB
}

func NewTicketRepository(db *DB) TicketRepository {
	if db == nil {
		panic("db is nil")
	}
	return TicketRepository{db: db}
}

// Create inserts the ticket iff the event still has capacity. The count and
// the insert run in one serializable transaction, so two concurrent
// checkouts at the boundary cannot both get in.
func (tr TicketRepository) Create(ctx context.Context, ticket entities.Ticket) (err error) {
	tx, err := tr.db.Conn.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
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

	capacity := 0
	err = tx.GetContext(ctx, &capacity, `
		SELECT capacity FROM events WHERE event_id = $1
	`, ticket.EventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("could not get event capacity: %w", err)
	}

	outstanding := 0
	err = tx.GetContext(ctx, &outstanding, `
		SELECT count(*) FROM tickets
		WHERE event_id = $1 AND status IN ('PENDING', 'CONFIRMED')
	`, ticket.EventID)
	if err != nil {
		return fmt.Errorf("could not count outstanding tickets: %w", err)
	}

	if outstanding >= capacity {
		return entities.ErrEventSoldOut
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO tickets
			(ticket_id, event_id, ticket_code, qr_payload, qr_image, status,
			 buyer_name, buyer_email, buyer_phone, user_id)
		VALUES
			(:ticket_id, :event_id, :ticket_code, :qr_payload, :qr_image, :status,
			 :buyer_name, :buyer_email, :buyer_phone, :user_id)
	`, ticket)
	if err != nil {
		return fmt.Errorf("could not insert ticket: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}
	err = event.NewBus(outboxPublisher).Publish(ctx, entities.TicketCreated{
		Header:     entities.NewEventHeader(),
		TicketID:   ticket.TicketID,
		EventID:    ticket.EventID,
		TicketCode: ticket.TicketCode,
		BuyerEmail: ticket.BuyerEmail,
	})
	if err != nil {
		return fmt.Errorf("could not publish TicketCreated: %w", err)
	}

	return nil
}

// Confirm transitions a PENDING ticket to CONFIRMED and stamps issued_at.
// Redelivered confirmations are no-ops: an already confirmed ticket is
// returned as is, and USED or CANCELLED are terminal, so a replayed payment
// webhook can never resurrect a ticket that was already admitted or voided.
// TicketConfirmed is only published when the transition actually happened.
func (tr TicketRepository) Confirm(ctx context.Context, ticketID string) (ticket entities.Ticket, err error) {
	tx, err := tr.db.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	err = tx.GetContext(ctx, &ticket, `
		UPDATE tickets
		SET status = 'CONFIRMED', issued_at = COALESCE(issued_at, now())
		WHERE ticket_id = $1 AND status = 'PENDING'
		RETURNING `+ticketColumns, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return tr.confirmConflict(ctx, ticketID)
	}
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not confirm ticket: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not create outbox publisher: %w", err)
	}
	err = event.NewBus(outboxPublisher).Publish(ctx, entities.TicketConfirmed{
		Header:     entities.NewEventHeaderWithIdempotencyKey(ticket.TicketID),
		TicketID:   ticket.TicketID,
		EventID:    ticket.EventID,
		TicketCode: ticket.TicketCode,
		BuyerName:  ticket.BuyerName,
		BuyerEmail: ticket.BuyerEmail,
		QRImage:    ticket.QRImage,
	})
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not publish TicketConfirmed: %w", err)
	}

	return ticket, nil
}

func (tr TicketRepository) confirmConflict(ctx context.Context, ticketID string) (entities.Ticket, error) {
	ticket, err := tr.GetByID(ctx, ticketID)
	if err != nil {
		return entities.Ticket{}, err
	}
	// CONFIRMED, USED or CANCELLED: nothing to transition, nothing published
	return ticket, nil
}

// MarkUsed performs the exactly-once admission transition: a compare-and-set
// that only succeeds while the persisted status is CONFIRMED. Two scanners
// racing on one ticket means exactly one wins; the other gets
// ErrTicketAlreadyUsed.
func (tr TicketRepository) MarkUsed(ctx context.Context, ticketID string) (ticket entities.Ticket, err error) {
	tx, err := tr.db.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	err = tx.GetContext(ctx, &ticket, `
		UPDATE tickets
		SET status = 'USED', used_at = now()
		WHERE ticket_id = $1 AND status = 'CONFIRMED'
		RETURNING `+ticketColumns, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Ticket{}, tr.markUsedConflict(ctx, ticketID)
	}
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not mark ticket used: %w", err)
	}

	usedAt := time.Now()
	if ticket.UsedAt != nil {
		usedAt = *ticket.UsedAt
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not create outbox publisher: %w", err)
	}
	err = event.NewBus(outboxPublisher).Publish(ctx, entities.TicketUsed{
		Header:   entities.NewEventHeaderWithIdempotencyKey(ticket.TicketID),
		TicketID: ticket.TicketID,
		EventID:  ticket.EventID,
		UsedAt:   usedAt,
	})
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not publish TicketUsed: %w", err)
	}

	return ticket, nil
}

func (tr TicketRepository) markUsedConflict(ctx context.Context, ticketID string) error {
	var status entities.TicketStatus
	err := tr.db.Conn.GetContext(ctx, &status,
		`SELECT status FROM tickets WHERE ticket_id = $1`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("could not get ticket status: %w", err)
	}

	if status == entities.TicketStatusUsed {
		return entities.ErrTicketAlreadyUsed
	}
	return entities.ErrTicketNotConfirmed
}

// Cancel moves a PENDING or CONFIRMED ticket to CANCELLED. USED is
// terminal; cancelling an already cancelled ticket is a no-op.
func (tr TicketRepository) Cancel(ctx context.Context, ticketID string) (ticket entities.Ticket, err error) {
	tx, err := tr.db.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	err = tx.GetContext(ctx, &ticket, `
		UPDATE tickets
		SET status = 'CANCELLED'
		WHERE ticket_id = $1 AND status IN ('PENDING', 'CONFIRMED')
		RETURNING `+ticketColumns, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return tr.cancelConflict(ctx, ticketID)
	}
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not cancel ticket: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not create outbox publisher: %w", err)
	}
	err = event.NewBus(outboxPublisher).Publish(ctx, entities.TicketCancelled{
		Header:     entities.NewEventHeaderWithIdempotencyKey(ticket.TicketID),
		TicketID:   ticket.TicketID,
		EventID:    ticket.EventID,
		BuyerEmail: ticket.BuyerEmail,
	})
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not publish TicketCancelled: %w", err)
	}

	return ticket, nil
}

func (tr TicketRepository) cancelConflict(ctx context.Context, ticketID string) (entities.Ticket, error) {
	ticket, err := tr.GetByID(ctx, ticketID)
	if err != nil {
		return entities.Ticket{}, err
	}
	if ticket.Status == entities.TicketStatusUsed {
		return entities.Ticket{}, entities.ErrTicketAlreadyUsed
	}
	// already cancelled
	return ticket, nil
}

func (tr TicketRepository) GetByID(ctx context.Context, ticketID string) (entities.Ticket, error) {
	return tr.getBy(ctx, "ticket_id", ticketID)
}

func (tr TicketRepository) GetByCode(ctx context.Context, ticketCode string) (entities.Ticket, error) {
	return tr.getBy(ctx, "ticket_code", ticketCode)
}

// GetByQRPayload looks a ticket up by the exact stored payload string; the
// decoded fields are never used for lookup.
func (tr TicketRepository) GetByQRPayload(ctx context.Context, qrPayload string) (entities.Ticket, error) {
	return tr.getBy(ctx, "qr_payload", qrPayload)
}

func (tr TicketRepository) getBy(ctx context.Context, column, value string) (entities.Ticket, error) {
	var ticket entities.Ticket
	err := tr.db.Conn.GetContext(ctx, &ticket,
		`SELECT `+ticketColumns+` FROM tickets WHERE `+column+` = $1`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Ticket{}, entities.ErrTicketNotFound
	}
	if err != nil {
		return entities.Ticket{}, fmt.Errorf("could not get ticket by %s: %w", column, err)
	}
	return ticket, nil
}

func (tr TicketRepository) ListByEvent(ctx context.Context, eventID string) ([]entities.Ticket, error) {
	var tickets []entities.Ticket
	err := tr.db.Conn.SelectContext(ctx, &tickets,
		`SELECT `+ticketColumns+` FROM tickets WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("could not list tickets for event: %w", err)
	}
	return tickets, nil
}

func (tr TicketRepository) ListByBuyerEmail(ctx context.Context, email string) ([]entities.Ticket, error) {
	var tickets []entities.Ticket
	err := tr.db.Conn.SelectContext(ctx, &tickets,
		`SELECT `+ticketColumns+` FROM tickets WHERE buyer_email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("could not list tickets by email: %w", err)
	}
	return tickets, nil
}

// LinkToUser retro-attaches unowned tickets bought with the given email.
// Idempotent: a second run matches nothing.
func (tr TicketRepository) LinkToUser(ctx context.Context, email, userID string) (int64, error) {
	res, err := tr.db.Conn.ExecContext(ctx, `
		UPDATE tickets SET user_id = $2
		WHERE buyer_email = $1 AND user_id IS NULL
	`, email, userID)
	if err != nil {
		return 0, fmt.Errorf("could not link tickets to user: %w", err)
	}
	return res.RowsAffected()
}
