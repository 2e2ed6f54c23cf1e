package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

// deliveryRecorder writes the email record before transmitting it, then stamps
// the sent time. Without a configured transport the record stays unsent.
type deliveryRecorder struct {
	emails   repository.CampaignInstanceEmailRepository
	renderer *TemplateRenderer
	sender   EmailSender
	now      func() time.Time
}

func (d *deliveryRecorder) deliver(ctx context.Context, q repository.Querier, actor domain.Actor, c *domain.Campaign, target deliveryTarget) (*domain.CampaignInstanceEmail, error) {
	body, err := d.renderer.Render(ctx, q, c.TenantID, c.EmailTemplate.Body, target.Address)
	if err != nil {
		return nil, err
	}

	campaignID := c.ID
	userID := actor.UserID
	email := &domain.CampaignInstanceEmail{
		TenantID:         c.TenantID,
		CampaignID:       &campaignID,
		ToEmailAddress:   target.Address,
		FromEmailAddress: c.EmailTemplate.FromEmailAddress,
		Subject:          c.EmailTemplate.Subject,
		Body:             body,
		CreatedBy:        &userID,
		UpdatedBy:        &userID,
	}
	if err := d.emails.Create(ctx, q, email); err != nil {
		return nil, fmt.Errorf("record email to %s: %w", target.Address, err)
	}

	if d.sender == nil || !d.sender.IsConfigured() {
		return email, nil
	}

	content := domain.MailContent{
		From:    email.FromEmailAddress,
		Subject: email.Subject,
		Body:    email.Body,
	}
	if err := d.sender.SendTo(ctx, domain.MailTemplateCampaignReminder, target.Address, content); err != nil {
		return nil, fmt.Errorf("send email to %s: %w", target.Address, err)
	}

	sent := d.now().UTC()
	if err := d.emails.MarkSent(ctx, q, c.TenantID, email.ID, sent); err != nil {
		return nil, fmt.Errorf("mark email %s sent: %w", email.ID, err)
	}
	email.Sent = &sent
	return email, nil
}
