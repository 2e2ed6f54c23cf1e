package app

import (
	"context"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

// EmailSender is the outbound mail transport.
type EmailSender interface {
	// IsConfigured reports whether messages can be transmitted at all.
	IsConfigured() bool
	SendTo(ctx context.Context, template domain.MailTemplate, to string, content domain.MailContent) error
}

// Repositories groups the stores used by the campaign services.
type Repositories struct {
	Campaigns      repository.CampaignRepository
	Vendors        repository.VendorRepository
	Clients        repository.ClientRepository
	Users          repository.UserRepository
	EmailTemplates repository.EmailTemplateRepository
	Files          repository.FileRepository
	References     repository.ReferenceRepository
	Instances      repository.CampaignInstanceRepository
	Emails         repository.CampaignInstanceEmailRepository
	AuditLogs      repository.AuditLogRepository
}
