package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
	"github.com/vendorrisk/golang_services/internal/platform/database"
	"github.com/vendorrisk/golang_services/internal/platform/messagebroker"
)

// CampaignSentSubject is published after a send commits.
const CampaignSentSubject = "campaign.sent"

// CampaignSentEvent is the payload of CampaignSentSubject.
type CampaignSentEvent struct {
	CampaignID       uuid.UUID `json:"campaign_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	InstancesCreated int       `json:"instances_created"`
	EmailsRecorded   int       `json:"emails_recorded"`
	EmailsSent       int       `json:"emails_sent"`
	SentBy           uuid.UUID `json:"sent_by"`
	SentAt           time.Time `json:"sent_at"`
}

// CampaignService implements the campaign use cases. Every method is scoped to
// the actor's tenant.
type CampaignService struct {
	db        database.Querier
	tx        database.Transactor
	repos     Repositories
	publisher messagebroker.Publisher
	logger    *slog.Logger
	now       func() time.Time

	resolver    *recipientResolver
	broadcaster *instanceBroadcaster
	recorder    *deliveryRecorder
}

// NewCampaignService wires the send workflow. publisher may be nil when no
// broker is configured.
func NewCampaignService(
	db database.Querier,
	tx database.Transactor,
	repos Repositories,
	sender EmailSender,
	publisher messagebroker.Publisher,
	logger *slog.Logger,
) *CampaignService {
	s := &CampaignService{
		db:        db,
		tx:        tx,
		repos:     repos,
		publisher: publisher,
		logger:    logger.With("service", "campaign_app"),
		now:       time.Now,
	}
	s.resolver = &recipientResolver{vendors: repos.Vendors, clients: repos.Clients}
	s.broadcaster = &instanceBroadcaster{instances: repos.Instances}
	s.recorder = &deliveryRecorder{
		emails:   repos.Emails,
		renderer: NewTemplateRenderer(repos.Users),
		sender:   sender,
		now:      func() time.Time { return s.now() },
	}
	return s
}

// Create stores a new campaign in Not Started status with the tenant's next reference.
func (s *CampaignService) Create(ctx context.Context, actor domain.Actor, in domain.CampaignInput) (*domain.Campaign, error) {
	if err := validateCampaignInput(in); err != nil {
		return nil, err
	}
	var created *domain.Campaign
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		c, err := s.insert(ctx, q, actor, in, nil)
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Campaign created", "campaign_id", created.ID, "tenant_id", actor.TenantID, "reference", created.Reference)
	s.audit(ctx, actor, created.ID, domain.AuditActionCreate, created)
	return created, nil
}

// Import creates a campaign keyed by an external hash; a hash can only be imported once per tenant.
func (s *CampaignService) Import(ctx context.Context, actor domain.Actor, in domain.CampaignInput, importHash string) (*domain.Campaign, error) {
	importHash = strings.TrimSpace(importHash)
	if importHash == "" {
		return nil, domain.ErrImportHashRequired
	}
	if err := validateCampaignInput(in); err != nil {
		return nil, err
	}
	var created *domain.Campaign
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		exists, err := s.repos.Campaigns.ExistsByImportHash(ctx, q, actor.TenantID, importHash)
		if err != nil {
			return fmt.Errorf("check import hash: %w", err)
		}
		if exists {
			return domain.ErrImportHashExists
		}
		c, err := s.insert(ctx, q, actor, in, &importHash)
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, created.ID, domain.AuditActionImport, created)
	return created, nil
}

func (s *CampaignService) insert(ctx context.Context, q database.Querier, actor domain.Actor, in domain.CampaignInput, importHash *string) (*domain.Campaign, error) {
	c, err := s.assignRelatedData(ctx, q, actor, in)
	if err != nil {
		return nil, err
	}
	ref, err := s.repos.References.Next(ctx, q, actor.TenantID, domain.EntityCampaign)
	if err != nil {
		return nil, fmt.Errorf("next campaign reference: %w", err)
	}
	userID := actor.UserID
	c.Reference = ref
	c.Status = domain.CampaignStatusNotStarted
	c.ImportHash = importHash
	c.CreatedBy = &userID
	c.UpdatedBy = &userID
	if err := s.repos.Campaigns.Create(ctx, q, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

// Update replaces the editable fields of a campaign. Related ids are re-filtered to the tenant.
func (s *CampaignService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.CampaignInput) (*domain.Campaign, error) {
	if err := validateCampaignInput(in); err != nil {
		return nil, err
	}
	var updated *domain.Campaign
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		existing, err := s.repos.Campaigns.FindByID(ctx, q, actor.TenantID, id)
		if err != nil {
			return err
		}
		c, err := s.assignRelatedData(ctx, q, actor, in)
		if err != nil {
			return err
		}
		userID := actor.UserID
		c.ID = existing.ID
		c.Reference = existing.Reference
		c.Status = existing.Status
		c.ImportHash = existing.ImportHash
		c.CreatedBy = existing.CreatedBy
		c.CreatedAt = existing.CreatedAt
		c.UpdatedBy = &userID
		if err := s.repos.Campaigns.Update(ctx, q, c); err != nil {
			return fmt.Errorf("update campaign: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, updated.ID, domain.AuditActionUpdate, updated)
	return updated, nil
}

// DestroyAll deletes every id or none of them.
func (s *CampaignService) DestroyAll(ctx context.Context, actor domain.Actor, ids []uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		for _, id := range ids {
			if err := s.repos.Campaigns.Delete(ctx, q, actor.TenantID, id); err != nil {
				return fmt.Errorf("delete campaign %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.audit(ctx, actor, id, domain.AuditActionDelete, nil)
	}
	return nil
}

// FindByID returns domain.ErrNotFound for ids outside the actor's tenant.
func (s *CampaignService) FindByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Campaign, error) {
	return s.repos.Campaigns.FindByID(ctx, s.db, actor.TenantID, id)
}

func (s *CampaignService) FindAllAutocomplete(ctx context.Context, actor domain.Actor, search string, limit int) ([]domain.AutocompleteItem, error) {
	return s.repos.Campaigns.FindAllAutocomplete(ctx, s.db, actor.TenantID, search, limit)
}

func (s *CampaignService) FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignFilter) ([]*domain.Campaign, int, error) {
	return s.repos.Campaigns.FindAndCountAll(ctx, s.db, actor.TenantID, filter)
}

// ReviewByID summarises who a campaign would reach if it were sent now.
func (s *CampaignService) ReviewByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CampaignReview, error) {
	c, err := s.repos.Campaigns.FindByID(ctx, s.db, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	vendorIDs, err := s.repos.Vendors.FilterIDsInTenant(ctx, s.db, actor.TenantID, c.Vendors)
	if err != nil {
		return nil, fmt.Errorf("filter campaign vendors: %w", err)
	}
	vendorsNoEmail, err := s.repos.Vendors.CountWithoutEmail(ctx, s.db, actor.TenantID, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("count vendors without email: %w", err)
	}
	clientIDs, err := s.repos.Clients.FilterIDsInTenant(ctx, s.db, actor.TenantID, c.Clients)
	if err != nil {
		return nil, fmt.Errorf("filter campaign clients: %w", err)
	}
	clientsNoEmail, err := s.repos.Clients.CountWithoutEmail(ctx, s.db, actor.TenantID, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("count clients without email: %w", err)
	}
	total := len(vendorIDs) + len(clientIDs)
	noEmail := vendorsNoEmail + clientsNoEmail

	templateName := ""
	if c.EmailTemplateID != nil {
		t, err := s.repos.EmailTemplates.FindByID(ctx, s.db, actor.TenantID, *c.EmailTemplateID)
		switch {
		case err == nil:
			templateName = t.Name
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("load email template: %w", err)
		}
	}

	now := s.now().UTC()
	return &domain.CampaignReview{
		TotalVendorsOrClients:   total,
		NoEmailVendorsOrClients: noEmail,
		DueDate:                 c.DueDate,
		CurrentDate:             now,
		Type:                    c.Type,
		Audience:                c.Audience,
		ComingDueDays:           comingDueDays(c.DueDate, now),
		EmailTemplateName:       templateName,
	}, nil
}

func comingDueDays(due, now time.Time) int {
	const day = 24 * time.Hour
	return int(due.UTC().Truncate(day).Sub(now.UTC().Truncate(day)) / day)
}

// Send broadcasts a campaign: it creates the questionnaire instances, records
// and transmits one email per delivery target and moves the campaign to In
// Progress. Everything happens in one transaction; any failure, including a
// transport error, leaves no trace.
func (s *CampaignService) Send(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.SendResult, error) {
	start := s.now()
	var (
		result   domain.SendResult
		campaign *domain.Campaign
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		result = domain.SendResult{CampaignID: id}

		c, err := s.repos.Campaigns.FindByIDForUpdate(ctx, q, actor.TenantID, id)
		if err != nil {
			return err
		}
		if c.Status != domain.CampaignStatusNotStarted {
			return domain.ErrCampaignAlreadySent
		}
		campaign = c

		rcpts, err := s.resolver.resolve(ctx, q, c)
		if err != nil {
			return err
		}

		if result.InstancesCreated, err = s.broadcaster.broadcast(ctx, q, actor, c, rcpts); err != nil {
			return err
		}

		for _, target := range classifyEmails(rcpts, c.EmailTemplate) {
			email, err := s.recorder.deliver(ctx, q, actor, c, target)
			if err != nil {
				return err
			}
			result.EmailsRecorded++
			if email.Sent != nil {
				result.EmailsSent++
			}
		}

		if err := s.repos.Campaigns.UpdateStatus(ctx, q, actor.TenantID, c.ID, domain.CampaignStatusInProgress, actor.UserID); err != nil {
			return fmt.Errorf("update campaign status: %w", err)
		}
		return nil
	})
	if err != nil {
		campaignSendsCounter.WithLabelValues(sendOutcome(err)).Inc()
		s.logger.ErrorContext(ctx, "Campaign send failed", "campaign_id", id, "tenant_id", actor.TenantID, "error", err)
		return nil, err
	}

	campaignSendsCounter.WithLabelValues(sendOutcomeSent).Inc()
	campaignSendDurationHist.WithLabelValues(string(campaign.Type)).Observe(s.now().Sub(start).Seconds())
	campaignInstancesCreatedCounter.WithLabelValues(string(campaign.Audience)).Add(float64(result.InstancesCreated))
	campaignEmailsCounter.WithLabelValues("recorded").Add(float64(result.EmailsRecorded))
	campaignEmailsCounter.WithLabelValues("sent").Add(float64(result.EmailsSent))

	s.logger.InfoContext(ctx, "Campaign sent",
		"campaign_id", id,
		"tenant_id", actor.TenantID,
		"instances_created", result.InstancesCreated,
		"emails_recorded", result.EmailsRecorded,
		"emails_sent", result.EmailsSent,
	)
	s.audit(ctx, actor, id, domain.AuditActionSend, result)
	s.publishSent(ctx, actor, result)
	return &result, nil
}

func sendOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return sendOutcomeNotFound
	case errors.Is(err, domain.ErrCampaignAlreadySent):
		return sendOutcomeAlreadySent
	default:
		return sendOutcomeFailed
	}
}

func (s *CampaignService) publishSent(ctx context.Context, actor domain.Actor, result domain.SendResult) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(CampaignSentEvent{
		CampaignID:       result.CampaignID,
		TenantID:         actor.TenantID,
		InstancesCreated: result.InstancesCreated,
		EmailsRecorded:   result.EmailsRecorded,
		EmailsSent:       result.EmailsSent,
		SentBy:           actor.UserID,
		SentAt:           s.now().UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode campaign sent event", "campaign_id", result.CampaignID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, CampaignSentSubject, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish campaign sent event", "campaign_id", result.CampaignID, "error", err)
	}
}

// assignRelatedData turns input into a campaign whose references all belong to
// the actor's tenant. Foreign or stale ids are dropped, not rejected.
func (s *CampaignService) assignRelatedData(ctx context.Context, q database.Querier, actor domain.Actor, in domain.CampaignInput) (*domain.Campaign, error) {
	tenantID := actor.TenantID
	c := &domain.Campaign{
		TenantID:         tenantID,
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Type:             in.Type,
		Audience:         in.Audience,
		DueDate:          in.DueDate,
		Progress:         in.Progress,
		TotalRecipients:  in.TotalRecipients,
		QuestionnaireID:  in.QuestionnaireID,
		Questionnaire:    in.Questionnaire,
		ReminderSettings: in.ReminderSettings,
	}

	templates := s.repos.EmailTemplates
	var err error
	if c.EmailTemplateID, err = templates.FilterIDInTenant(ctx, q, tenantID, in.EmailTemplateID); err != nil {
		return nil, fmt.Errorf("filter email template: %w", err)
	}
	for _, ref := range []**uuid.UUID{
		&c.CampaignEnrollmentEmailTemplate,
		&c.RepeatReminderEmailTemplate,
		&c.EmailTemplateComingDue,
		&c.EmailTemplateOverdue,
	} {
		if *ref, err = templates.FilterIDInTenant(ctx, q, tenantID, *ref); err != nil {
			return nil, fmt.Errorf("filter reminder template: %w", err)
		}
	}

	if in.DoServerValidation {
		if err := requireEmailFields(in); err != nil {
			return nil, err
		}
		if c.EmailTemplateID == nil {
			name := strings.TrimSpace(in.EmailTemplateName)
			if name == "" {
				name = c.Name
			}
			userID := actor.UserID
			t := &domain.EmailTemplate{
				TenantID:         tenantID,
				Name:             name,
				FromEmailAddress: in.FromEmailAddress,
				Subject:          in.Subject,
				Body:             in.Body,
				CreatedBy:        &userID,
			}
			if err := templates.Create(ctx, q, t); err != nil {
				return nil, fmt.Errorf("create email template: %w", err)
			}
			c.EmailTemplateID = &t.ID
		}
	}

	if c.Vendors, err = s.repos.Vendors.FilterIDsInTenant(ctx, q, tenantID, in.Vendors); err != nil {
		return nil, fmt.Errorf("filter vendors: %w", err)
	}
	if c.Clients, err = s.repos.Clients.FilterIDsInTenant(ctx, q, tenantID, in.Clients); err != nil {
		return nil, fmt.Errorf("filter clients: %w", err)
	}
	attachments, err := s.repos.Files.FilterIDsInTenant(ctx, q, tenantID, in.Attachments)
	if err != nil {
		return nil, fmt.Errorf("filter attachments: %w", err)
	}

	c.EmailTemplate = domain.CampaignEmail{
		To:               in.To,
		CC:               in.CC,
		BCC:              in.BCC,
		FromEmailAddress: in.FromEmailAddress,
		Subject:          in.Subject,
		Body:             in.Body,
		Attachments:      attachments,
	}
	return c, nil
}

func validateCampaignInput(in domain.CampaignInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.RequiredFieldError{Field: "name"}
	}
	switch in.Type {
	case domain.CampaignTypeQuestionnaire, domain.CampaignTypeEmail:
	case "":
		return &domain.RequiredFieldError{Field: "type"}
	default:
		return fmt.Errorf("%w: unknown campaign type %q", domain.ErrValidation, in.Type)
	}
	switch in.Audience {
	case domain.AudienceVendors, domain.AudienceClients:
	case "":
		return &domain.RequiredFieldError{Field: "audience"}
	default:
		return fmt.Errorf("%w: unknown audience %q", domain.ErrValidation, in.Audience)
	}
	return nil
}

func requireEmailFields(in domain.CampaignInput) error {
	hasTo := false
	for _, k := range in.To {
		if strings.TrimSpace(k) != "" {
			hasTo = true
			break
		}
	}
	switch {
	case !hasTo:
		return &domain.RequiredFieldError{Field: "to"}
	case strings.TrimSpace(in.FromEmailAddress) == "":
		return &domain.RequiredFieldError{Field: "fromEmailAddress"}
	case strings.TrimSpace(in.Subject) == "":
		return &domain.RequiredFieldError{Field: "subject"}
	case strings.TrimSpace(in.Body) == "":
		return &domain.RequiredFieldError{Field: "body"}
	}
	return nil
}

// audit records an entry after commit. Failures are logged only.
func (s *CampaignService) audit(ctx context.Context, actor domain.Actor, id uuid.UUID, action domain.AuditAction, values any) {
	writeAudit(ctx, s.repos.AuditLogs, s.logger, s.now, domain.AuditLog{
		TenantID:    actor.TenantID,
		EntityName:  domain.EntityCampaign,
		EntityID:    id,
		Action:      action,
		Values:      values,
		CreatedByID: actor.UserID,
	})
}

func writeAudit(ctx context.Context, logs repository.AuditLogRepository, logger *slog.Logger, now func() time.Time, entry domain.AuditLog) {
	if logs == nil {
		return
	}
	entry.Timestamp = now().UTC()
	if err := logs.Log(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "Failed to write audit log",
			"entity", entry.EntityName, "entity_id", entry.EntityID, "action", entry.Action, "error", err)
	}
}
