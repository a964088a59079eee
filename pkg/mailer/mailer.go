package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/sistemafic/sistemafic-api/pkg/config"
)

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends messages through the configured SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns a configured SMTP mailer.
func New(cfg config.SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host required")
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{dialer: dialer, from: cfg.From}, nil
}

// Send delivers a single message.
func (m *Mailer) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient required")
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
