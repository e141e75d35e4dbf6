package api

import (
	"context"
	"sync"

	"danceschool/entities"
)

type MailerMock struct {
	mock sync.Mutex

	TicketEmails              []entities.TicketEmail
	PaymentConfirmationEmails []entities.PaymentConfirmationEmail
}

func (m *MailerMock) SendTicketEmail(ctx context.Context, email entities.TicketEmail) error {
	m.mock.Lock()
	defer m.mock.Unlock()

	m.TicketEmails = append(m.TicketEmails, email)
	return nil
}

func (m *MailerMock) SendPaymentConfirmationEmail(ctx context.Context, email entities.PaymentConfirmationEmail) error {
	m.mock.Lock()
	defer m.mock.Unlock()

	m.PaymentConfirmationEmails = append(m.PaymentConfirmationEmails, email)
	return nil
}
