package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
	"github.com/vendorrisk/golang_services/internal/platform/database"
)

// CampaignInstanceEmailService manages email records outside of a send, for
// manual corrections and imports from other systems.
type CampaignInstanceEmailService struct {
	db        database.Querier
	tx        database.Transactor
	emails    repository.CampaignInstanceEmailRepository
	campaigns repository.CampaignRepository
	auditLogs repository.AuditLogRepository
	logger    *slog.Logger
	now       func() time.Time
}

func NewCampaignInstanceEmailService(
	db database.Querier,
	tx database.Transactor,
	emails repository.CampaignInstanceEmailRepository,
	campaigns repository.CampaignRepository,
	auditLogs repository.AuditLogRepository,
	logger *slog.Logger,
) *CampaignInstanceEmailService {
	return &CampaignInstanceEmailService{
		db:        db,
		tx:        tx,
		emails:    emails,
		campaigns: campaigns,
		auditLogs: auditLogs,
		logger:    logger.With("service", "campaign_instance_email_app"),
		now:       time.Now,
	}
}

func (s *CampaignInstanceEmailService) Create(ctx context.Context, actor domain.Actor, in domain.CampaignInstanceEmailInput) (*domain.CampaignInstanceEmail, error) {
	var created *domain.CampaignInstanceEmail
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		e, err := s.insert(ctx, q, actor, in, nil)
		created = e
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, created.ID, domain.AuditActionCreate, created)
	return created, nil
}

func (s *CampaignInstanceEmailService) Import(ctx context.Context, actor domain.Actor, in domain.CampaignInstanceEmailInput, importHash string) (*domain.CampaignInstanceEmail, error) {
	importHash = strings.TrimSpace(importHash)
	if importHash == "" {
		return nil, domain.ErrImportHashRequired
	}
	var created *domain.CampaignInstanceEmail
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		exists, err := s.emails.ExistsByImportHash(ctx, q, actor.TenantID, importHash)
		if err != nil {
			return fmt.Errorf("check import hash: %w", err)
		}
		if exists {
			return domain.ErrImportHashExists
		}
		e, err := s.insert(ctx, q, actor, in, &importHash)
		created = e
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, created.ID, domain.AuditActionImport, created)
	return created, nil
}

func (s *CampaignInstanceEmailService) insert(ctx context.Context, q database.Querier, actor domain.Actor, in domain.CampaignInstanceEmailInput, importHash *string) (*domain.CampaignInstanceEmail, error) {
	if strings.TrimSpace(in.ToEmailAddress) == "" {
		return nil, &domain.RequiredFieldError{Field: "toEmailAddress"}
	}
	campaignID, err := s.campaignInTenant(ctx, q, actor.TenantID, in.CampaignID)
	if err != nil {
		return nil, err
	}
	userID := actor.UserID
	e := &domain.CampaignInstanceEmail{
		TenantID:         actor.TenantID,
		CampaignID:       campaignID,
		ToEmailAddress:   strings.TrimSpace(in.ToEmailAddress),
		FromEmailAddress: in.FromEmailAddress,
		Subject:          in.Subject,
		Body:             in.Body,
		Sent:             in.Sent,
		ImportHash:       importHash,
		CreatedBy:        &userID,
		UpdatedBy:        &userID,
	}
	if err := s.emails.Create(ctx, q, e); err != nil {
		return nil, fmt.Errorf("create campaign instance email: %w", err)
	}
	return e, nil
}

func (s *CampaignInstanceEmailService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.CampaignInstanceEmailInput) (*domain.CampaignInstanceEmail, error) {
	if strings.TrimSpace(in.ToEmailAddress) == "" {
		return nil, &domain.RequiredFieldError{Field: "toEmailAddress"}
	}
	var updated *domain.CampaignInstanceEmail
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		e, err := s.emails.FindByID(ctx, q, actor.TenantID, id)
		if err != nil {
			return err
		}
		campaignID, err := s.campaignInTenant(ctx, q, actor.TenantID, in.CampaignID)
		if err != nil {
			return err
		}
		userID := actor.UserID
		e.CampaignID = campaignID
		e.ToEmailAddress = strings.TrimSpace(in.ToEmailAddress)
		e.FromEmailAddress = in.FromEmailAddress
		e.Subject = in.Subject
		e.Body = in.Body
		e.Sent = in.Sent
		e.UpdatedBy = &userID
		if err := s.emails.Update(ctx, q, e); err != nil {
			return fmt.Errorf("update campaign instance email: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, updated.ID, domain.AuditActionUpdate, updated)
	return updated, nil
}

func (s *CampaignInstanceEmailService) FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignInstanceEmailFilter) ([]*domain.CampaignInstanceEmail, int, error) {
	return s.emails.FindAndCountAll(ctx, s.db, actor.TenantID, filter)
}

// campaignInTenant drops a campaign reference that does not belong to the tenant.
func (s *CampaignInstanceEmailService) campaignInTenant(ctx context.Context, q database.Querier, tenantID uuid.UUID, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	c, err := s.campaigns.FindByID(ctx, q, tenantID, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	return &c.ID, nil
}

func (s *CampaignInstanceEmailService) audit(ctx context.Context, actor domain.Actor, id uuid.UUID, action domain.AuditAction, values any) {
	writeAudit(ctx, s.auditLogs, s.logger, s.now, domain.AuditLog{
		TenantID:    actor.TenantID,
		EntityName:  domain.EntityCampaignInstanceEmail,
		EntityID:    id,
		Action:      action,
		Values:      values,
		CreatedByID: actor.UserID,
	})
}
