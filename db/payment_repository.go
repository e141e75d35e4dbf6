package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"danceschool/entities"
	"danceschool/message/event"
	"danceschool/message/outbox"
)

const paymentColumns = `reference, ticket_id, amount AS "amount.amount", currency AS "amount.currency",
	provider, status, channel, paid_at, raw_payload, created_at`

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) PaymentRepository {
	if db == nil {
		panic("db is nil")
	}
	return PaymentRepository{db: db}
}

func (pr PaymentRepository) Create(ctx context.Context, log entities.PaymentLog) error {
	_, err := pr.db.Conn.NamedExecContext(ctx, `
		INSERT INTO payment_logs (reference, ticket_id, amount, currency, provider, status)
		VALUES (:reference, :ticket_id, :amount.amount, :amount.currency, :provider, :status)
		ON CONFLICT (reference) DO NOTHING
	`, log)
	if err != nil {
		return fmt.Errorf("could not save payment log: %w", err)
	}
	return nil
}

func (pr PaymentRepository) GetByReference(ctx context.Context, reference string) (entities.PaymentLog, error) {
	var log entities.PaymentLog
	err := pr.db.Conn.GetContext(ctx, &log,
		`SELECT `+paymentColumns+` FROM payment_logs WHERE reference = $1`, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.PaymentLog{}, entities.ErrPaymentLogNotFound
	}
	if err != nil {
		return entities.PaymentLog{}, fmt.Errorf("could not get payment log: %w", err)
	}
	return log, nil
}

// MarkSuccess records the provider outcome and publishes PaymentReceived in
// the same transaction.
func (pr PaymentRepository) MarkSuccess(ctx context.Context, reference string, paidAt time.Time, channel string, raw json.RawMessage) (log entities.PaymentLog, err error) {
	tx, err := pr.db.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return entities.PaymentLog{}, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	err = tx.GetContext(ctx, &log, `
		UPDATE payment_logs
		SET status = 'SUCCESS', paid_at = $2, channel = $3, raw_payload = $4
		WHERE reference = $1
		RETURNING `+paymentColumns, reference, paidAt, channel, raw)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.PaymentLog{}, entities.ErrPaymentLogNotFound
	}
	if err != nil {
		return entities.PaymentLog{}, fmt.Errorf("could not mark payment success: %w", err)
	}

	ticketID := ""
	if log.TicketID != nil {
		ticketID = *log.TicketID
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return entities.PaymentLog{}, fmt.Errorf("could not create outbox publisher: %w", err)
	}
	err = event.NewBus(outboxPublisher).Publish(ctx, entities.PaymentReceived{
		Header:    entities.NewEventHeaderWithIdempotencyKey(reference),
		Reference: reference,
		TicketID:  ticketID,
		Amount:    log.Amount,
		Channel:   channel,
	})
	if err != nil {
		return entities.PaymentLog{}, fmt.Errorf("could not publish PaymentReceived: %w", err)
	}

	return log, nil
}

func (pr PaymentRepository) MarkFailed(ctx context.Context, reference string, raw json.RawMessage) (entities.PaymentLog, error) {
	return pr.setStatus(ctx, reference, entities.PaymentStatusFailed, raw)
}

func (pr PaymentRepository) MarkRefunded(ctx context.Context, reference string) (entities.PaymentLog, error) {
	return pr.setStatus(ctx, reference, entities.PaymentStatusRefunded, nil)
}

func (pr PaymentRepository) setStatus(ctx context.Context, reference string, status entities.PaymentStatus, raw json.RawMessage) (entities.PaymentLog, error) {
	var log entities.PaymentLog
	err := pr.db.Conn.GetContext(ctx, &log, `
		UPDATE payment_logs
		SET status = $2, raw_payload = COALESCE($3, raw_payload)
		WHERE reference = $1
		RETURNING `+paymentColumns, reference, status, raw)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.PaymentLog{}, entities.ErrPaymentLogNotFound
	}
	if err != nil {
		return entities.PaymentLog{}, fmt.Errorf("could not update payment log: %w", err)
	}
	return log, nil
}

func (pr PaymentRepository) List(ctx context.Context, status *entities.PaymentStatus) ([]entities.PaymentLog, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_logs`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	var logs []entities.PaymentLog
	err := pr.db.Conn.SelectContext(ctx, &logs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list payment logs: %w", err)
	}
	return logs, nil
}
