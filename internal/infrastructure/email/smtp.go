package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/core/ports"
)

const smtpTimeout = 30 * time.Second

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	ResetTTL time.Duration
}

// SMTPNotifier delivers notifications over SMTP, upgrading with STARTTLS
// whenever the server offers it.
type SMTPNotifier struct {
	cfg SMTPConfig
	log zerolog.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, log zerolog.Logger) *SMTPNotifier {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPNotifier{cfg: cfg, log: log.With().Str("component", "email").Logger()}
}

func (s *SMTPNotifier) Notify(ctx context.Context, n ports.Notification) error {
	subject, body, err := compose(n, s.cfg.ResetTTL)
	if err != nil {
		return err
	}
	return s.send(ctx, n.To, subject, body)
}

func (s *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := net.Dialer{Timeout: smtpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	} else if s.cfg.Username != "" && s.cfg.Port != 25 && s.cfg.Port != 1025 {
		return fmt.Errorf("STARTTLS not available on port %d (required for secure auth)", s.cfg.Port)
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL command: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT command: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command: %w", err)
	}
	if _, err := wc.Write([]byte(s.buildMessage(to, subject, body))); err != nil {
		wc.Close()
		return fmt.Errorf("writing email body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.log.Warn().Err(err).Msg("smtp QUIT command failed")
	}
	return nil
}

func (s *SMTPNotifier) buildMessage(to, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)
}
