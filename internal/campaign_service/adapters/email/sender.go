package email

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/platform/config"
)

// ErrNotConfigured is returned by SendTo when the transport lacks credentials.
var ErrNotConfigured = errors.New("email transport not configured")

// Sender is the transport contract the campaign workflow depends on.
type Sender interface {
	IsConfigured() bool
	SendTo(ctx context.Context, template domain.MailTemplate, to string, content domain.MailContent) error
}

// NewSender picks the transport named by cfg.Provider. Unknown or empty
// providers yield a transport that reports itself unconfigured.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) Sender {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "smtp":
		return NewSMTPSender(cfg, logger)
	case "brevo":
		return NewBrevoSender(cfg, nil, logger)
	default:
		logger.Warn("no email provider configured; campaign emails will be recorded but not sent", "provider", cfg.Provider)
		return noopSender{}
	}
}

type noopSender struct{}

func (noopSender) IsConfigured() bool { return false }

func (noopSender) SendTo(context.Context, domain.MailTemplate, string, domain.MailContent) error {
	return ErrNotConfigured
}

func fromAddress(content domain.MailContent, fallback string) string {
	if from := strings.TrimSpace(content.From); from != "" {
		return from
	}
	return fallback
}
