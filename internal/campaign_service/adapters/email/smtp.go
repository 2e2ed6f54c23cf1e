package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strconv"
	"time"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/platform/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender relays messages through a plain SMTP server.
type SMTPSender struct {
	host        string
	port        int
	username    string
	password    string
	defaultFrom string
	logger      *slog.Logger
	sendMail    sendMailFunc
	now         func() time.Time
}

func NewSMTPSender(cfg config.EmailConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		defaultFrom: cfg.DefaultFrom,
		logger:      logger.With("component", "smtp_sender"),
		sendMail:    smtp.SendMail,
		now:         time.Now,
	}
}

func (s *SMTPSender) IsConfigured() bool {
	return s.host != "" && s.port > 0
}

func (s *SMTPSender) SendTo(ctx context.Context, template domain.MailTemplate, to string, content domain.MailContent) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	from := fromAddress(content, s.defaultFrom)
	if from == "" {
		return fmt.Errorf("smtp: no sender address for %s", to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	addr := s.host + ":" + strconv.Itoa(s.port)
	msg := buildMessage(from, to, content.Subject, content.Body, template, s.now())

	if err := s.sendMail(addr, auth, from, []string{to}, msg); err != nil {
		s.logger.WarnContext(ctx, "smtp send failed", "to", to, "error", err)
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.DebugContext(ctx, "smtp message accepted", "to", to, "template", template)
	return nil
}

// buildMessage renders a single-part HTML message with RFC 2047 encoded subject.
func buildMessage(from, to, subject, body string, template domain.MailTemplate, at time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", at.UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "X-Mail-Template: %s\r\n", template)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
