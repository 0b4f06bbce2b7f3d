package pipeline

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// SMTPMailer sends notifications over SMTP with mandatory STARTTLS
type SMTPMailer struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

// Send delivers a plain-text message to every recipient
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	if m.Host == "" || m.From == "" {
		return fmt.Errorf("smtp not configured (host/from)")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	port := m.Port
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(m.Host, port, m.User, m.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         m.Host,
		InsecureSkipVerify: m.SkipTLSVerify,
	}

	return d.DialAndSend(msg)
}
