package api

import (
	"context"
	"fmt"
	"net/smtp"

	"danceschool/entities"

	"github.com/domodwyer/mailyak/v3"
)

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: smtp.PlainAuth("", user, password, host),
		from: from,
	}
}

func (m *SMTPMailer) SendTicketEmail(ctx context.Context, email entities.TicketEmail) error {
	mail := mailyak.New(m.addr, m.auth)
	mail.From(m.from)
	mail.To(email.To)
	mail.Subject(fmt.Sprintf("Your ticket for %s", email.EventTitle))

	fmt.Fprintf(mail.HTML(), `
		<p>Hi %s,</p>
		<p>Your ticket for <strong>%s</strong> is confirmed.</p>
		<ul>
			<li>Date: %s</li>
			<li>Time: %s</li>
			<li>Venue: %s</li>
			<li>Ticket code: <strong>%s</strong></li>
		</ul>
		<p><img src="%s" alt="Ticket QR code" /></p>
		<p>You can also view your ticket at <a href="%s">%s</a>.</p>
		<p>Show the QR code at the entrance.</p>
	`,
		email.BuyerName,
		email.EventTitle,
		email.EventDate.Format("Monday, 2 January 2006"),
		email.EventTime,
		email.EventVenue,
		email.TicketCode,
		email.QRImage,
		email.TicketURL,
		email.TicketURL,
	)

	if err := mail.Send(); err != nil {
		return fmt.Errorf("could not send ticket email to %s: %w", email.To, err)
	}
	return nil
}

func (m *SMTPMailer) SendPaymentConfirmationEmail(ctx context.Context, email entities.PaymentConfirmationEmail) error {
	mail := mailyak.New(m.addr, m.auth)
	mail.From(m.from)
	mail.To(email.To)
	mail.Subject(fmt.Sprintf("Payment received for %s", email.EventTitle))

	fmt.Fprintf(mail.HTML(), `
		<p>Hi %s,</p>
		<p>We received your payment of <strong>%s %s</strong> for <strong>%s</strong>.</p>
		<p>Payment reference: %s</p>
		<p>Your ticket will arrive in a separate email.</p>
	`,
		email.BuyerName,
		email.Amount.Amount,
		email.Amount.Currency,
		email.EventTitle,
		email.Reference,
	)

	if err := mail.Send(); err != nil {
		return fmt.Errorf("could not send payment confirmation email to %s: %w", email.To, err)
	}
	return nil
}
