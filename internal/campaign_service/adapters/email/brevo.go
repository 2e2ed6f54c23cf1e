package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/platform/config"
)

// BrevoSender posts transactional emails to the Brevo v3 API.
type BrevoSender struct {
	apiKey      string
	baseURL     string
	defaultFrom string
	templateIDs map[domain.MailTemplate]int64
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewBrevoSender(cfg config.EmailConfig, httpClient *http.Client, logger *slog.Logger) *BrevoSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	templateIDs := map[domain.MailTemplate]int64{}
	if cfg.BrevoCampaignReminderTemplateID > 0 {
		templateIDs[domain.MailTemplateCampaignReminder] = cfg.BrevoCampaignReminderTemplateID
	}
	return &BrevoSender{
		apiKey:      cfg.BrevoAPIKey,
		baseURL:     strings.TrimRight(cfg.BrevoBaseURL, "/"),
		defaultFrom: cfg.DefaultFrom,
		templateIDs: templateIDs,
		httpClient:  httpClient,
		logger:      logger.With("component", "brevo_sender"),
	}
}

type brevoAddress struct {
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoAddress      `json:"sender"`
	To          []brevoAddress    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	TemplateID  int64             `json:"templateId,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (b *BrevoSender) IsConfigured() bool {
	return b.apiKey != "" && b.baseURL != ""
}

func (b *BrevoSender) SendTo(ctx context.Context, template domain.MailTemplate, to string, content domain.MailContent) error {
	if !b.IsConfigured() {
		return ErrNotConfigured
	}
	from := fromAddress(content, b.defaultFrom)
	if from == "" {
		return fmt.Errorf("brevo: no sender address for %s", to)
	}

	payload := brevoEmail{
		Sender:  brevoAddress{Email: from},
		To:      []brevoAddress{{Email: to}},
		Subject: content.Subject,
	}
	if id, ok := b.templateIDs[template]; ok {
		payload.TemplateID = id
		payload.Params = map[string]string{"subject": content.Subject, "body": content.Body}
	} else {
		payload.HTMLContent = content.Body
	}

	reqBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal brevo request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/smtp/email", bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("failed to create brevo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to brevo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b.logger.DebugContext(ctx, "brevo accepted message", "to", to, "status_code", resp.StatusCode)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	errMsg := fmt.Sprintf("brevo API error: status %d", resp.StatusCode)
	var apiErr brevoError
	if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
		errMsg = fmt.Sprintf("brevo API error: status %d, code %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	b.logger.WarnContext(ctx, "brevo send failed", "to", to, "status_code", resp.StatusCode, "error", errMsg)
	return errors.New(errMsg)
}
