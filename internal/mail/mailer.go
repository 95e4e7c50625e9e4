package mail

import (
	"context"
	"fmt"
	"net/smtp"
)

// Message is a rendered outbound email.
type Message struct {
	Subject string
	HTML    string
}

// Mailer is the fire-and-forget delivery capability the auth flows consume.
type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to string, msg Message) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	raw := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to, msg.Subject, mime, msg.HTML))

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, raw)
}
