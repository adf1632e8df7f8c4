// Package email implements the outbound confirmation-code transport.
//
// There is deliberately no retry or backoff here: a delivery failure is
// surfaced to the signup caller as a fatal error, and the Redis signup
// throttle upstream bounds how hard this path can be hit.
package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Config captures the SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPMailer sends confirmation codes over plain SMTP.
type SMTPMailer struct {
	cfg Config
	log zerolog.Logger
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) SendConfirmationCode(ctx context.Context, email, username, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your confirmation code\r\n\r\n"+
			"Hello %s,\r\n\r\nYour confirmation code is: %s\r\n",
		m.cfg.From, email, username, code,
	)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email, err)
	}

	m.log.Info().Str("email", email).Msg("confirmation code sent")
	return nil
}

// LogMailer writes the code to the log instead of sending mail. Used in
// development and tests where no SMTP transport is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendConfirmationCode(_ context.Context, email, username, code string) error {
	m.log.Info().
		Str("email", email).
		Str("username", username).
		Str("code", code).
		Msg("confirmation code (log mailer)")
	return nil
}
