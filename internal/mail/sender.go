// Package mail sends transactional email for the blog platform: account
// activation links, password reset links and contact form relays.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message to the mail transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail over SMTP with implicit TLS (port 465 style).
type SMTPSender struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp").Logger(),
	}
}

// Send delivers a single message. Single attempt, no retries; the caller
// decides whether delivery gates the surrounding flow.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	body := []byte(
		fmt.Sprintf("From: %s\r\n", s.cfg.From) +
			fmt.Sprintf("To: %s\r\n", msg.To) +
			fmt.Sprintf("Subject: %s\r\n", msg.Subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			msg.HTML,
	)

	addr := s.cfg.Host + ":" + s.cfg.Port
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return nil
}

// NopSender logs messages instead of delivering them.
// Used when mail is disabled in configuration (local development, tests).
type NopSender struct {
	logger zerolog.Logger
}

// NewNopSender creates a NopSender.
func NewNopSender(logger zerolog.Logger) *NopSender {
	return &NopSender{logger: logger.With().Str("component", "mail_nop").Logger()}
}

// Send logs the message and discards it.
func (s *NopSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail disabled, discarding message")
	return nil
}
