// Package email sends transactional mail: password-reset codes, welcome
// messages and payment receipts.
package email

import (
	"context"

	"gopkg.in/gomail.v2"

	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/logger"
)

// Message is one outbound email. HTML is required; Text is an optional
// plain alternative.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a NoopMailer when no SMTP host is configured.
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		logger.Warn("smtp.host not set, outgoing mail is only logged")
		return NoopMailer{}
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer delivers through an SMTP relay, one connection per message.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return s.dialer.DialAndSend(m)
}

// NoopMailer logs messages instead of sending them.
type NoopMailer struct{}

func (NoopMailer) Send(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("email not sent, smtp disabled", "to", msg.To, "subject", msg.Subject)
	return nil
}
