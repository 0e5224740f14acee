package notify

import (
	"context"
	"log/slog"

	"burger-order-api/logger"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := s.message(email)
	return s.dialer.DialAndSend(m)
}

func (s *SMTPSender) message(email Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTML)
	return m
}

// LogSender writes emails to the log instead of sending them. Used when
// no SMTP relay is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: logger.Component(log, "mail")}
}

func (s *LogSender) Send(ctx context.Context, email Email) error {
	s.log.Info("Email (not sent, SMTP disabled)", "to", email.To, "subject", email.Subject)
	return nil
}
