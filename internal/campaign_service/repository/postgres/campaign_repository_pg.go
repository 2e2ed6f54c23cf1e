package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

const campaignColumns = `id, tenant_id, reference, name, description, type, audience, status, due_date,
	progress, total_recipients, questionnaire_id, questionnaire, vendor_ids, client_ids,
	email_template_id, email_to, email_cc, email_bcc, email_from, email_subject, email_body, email_attachment_ids,
	use_reminder_email_after_campaign_enrollment, campaign_enrollment_email_template_id, days_after_campaign_enrollment,
	use_repeat_reminder_email, repeat_reminder_email_template_id, interval_days_for_repeat_reminder_email,
	use_reminder_email_coming_due, email_template_coming_due_id, days_before_coming_due,
	use_reminder_email_overdue, email_template_overdue_id, days_after_overdue,
	import_hash, created_by, updated_by, created_at, updated_at`

const (
	insertCampaignSQL = `INSERT INTO campaigns (` + campaignColumns + `) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
	$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40)`

	updateCampaignSQL = `UPDATE campaigns SET
	name = $3, description = $4, type = $5, audience = $6, due_date = $7, progress = $8, total_recipients = $9,
	questionnaire_id = $10, questionnaire = $11, vendor_ids = $12, client_ids = $13, email_template_id = $14,
	email_to = $15, email_cc = $16, email_bcc = $17, email_from = $18, email_subject = $19, email_body = $20,
	email_attachment_ids = $21,
	use_reminder_email_after_campaign_enrollment = $22, campaign_enrollment_email_template_id = $23, days_after_campaign_enrollment = $24,
	use_repeat_reminder_email = $25, repeat_reminder_email_template_id = $26, interval_days_for_repeat_reminder_email = $27,
	use_reminder_email_coming_due = $28, email_template_coming_due_id = $29, days_before_coming_due = $30,
	use_reminder_email_overdue = $31, email_template_overdue_id = $32, days_after_overdue = $33,
	updated_by = $34, updated_at = $35
	WHERE tenant_id = $1 AND id = $2`

	updateCampaignStatusSQL = `UPDATE campaigns SET status = $3, updated_by = $4, updated_at = $5 WHERE tenant_id = $1 AND id = $2`
	deleteCampaignSQL       = `DELETE FROM campaigns WHERE tenant_id = $1 AND id = $2`
	findCampaignSQL         = `SELECT ` + campaignColumns + ` FROM campaigns WHERE tenant_id = $1 AND id = $2`
	findCampaignForUpdate   = findCampaignSQL + ` FOR UPDATE`
	campaignImportHashSQL   = `SELECT EXISTS (SELECT 1 FROM campaigns WHERE tenant_id = $1 AND import_hash = $2)`
)

// Sortable fields accepted in orderBy ("name_ASC", "dueDate_DESC", ...).
var campaignOrderColumns = map[string]string{
	"reference": "reference",
	"name":      "name",
	"type":      "type",
	"audience":  "audience",
	"status":    "status",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type pgCampaignRepository struct{}

// NewPgCampaignRepository creates a campaign repository for PostgreSQL.
func NewPgCampaignRepository() repository.CampaignRepository {
	return &pgCampaignRepository{}
}

func campaignScanTargets(c *domain.Campaign) []any {
	return []any{
		&c.ID, &c.TenantID, &c.Reference, &c.Name, &c.Description, &c.Type, &c.Audience, &c.Status, &c.DueDate,
		&c.Progress, &c.TotalRecipients, &c.QuestionnaireID, &c.Questionnaire, &c.Vendors, &c.Clients,
		&c.EmailTemplateID, &c.EmailTemplate.To, &c.EmailTemplate.CC, &c.EmailTemplate.BCC,
		&c.EmailTemplate.FromEmailAddress, &c.EmailTemplate.Subject, &c.EmailTemplate.Body, &c.EmailTemplate.Attachments,
		&c.UseReminderEmailAfterCampaignEnrollment, &c.CampaignEnrollmentEmailTemplate, &c.DaysAfterCampaignEnrollment,
		&c.UseRepeatReminderEmail, &c.RepeatReminderEmailTemplate, &c.IntervalDaysForRepeatReminderEmail,
		&c.UseReminderEmailComingDue, &c.EmailTemplateComingDue, &c.DaysBeforeComingDue,
		&c.UseReminderEmailOverdue, &c.EmailTemplateOverdue, &c.DaysAfterOverdue,
		&c.ImportHash, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	}
}

func (r *pgCampaignRepository) Create(ctx context.Context, q repository.Querier, c *domain.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	normalizeCampaign(c)

	_, err := q.Exec(ctx, insertCampaignSQL,
		c.ID, c.TenantID, c.Reference, c.Name, c.Description, c.Type, c.Audience, c.Status, c.DueDate,
		c.Progress, c.TotalRecipients, c.QuestionnaireID, c.Questionnaire, c.Vendors, c.Clients,
		c.EmailTemplateID, c.EmailTemplate.To, c.EmailTemplate.CC, c.EmailTemplate.BCC,
		c.EmailTemplate.FromEmailAddress, c.EmailTemplate.Subject, c.EmailTemplate.Body, c.EmailTemplate.Attachments,
		c.UseReminderEmailAfterCampaignEnrollment, c.CampaignEnrollmentEmailTemplate, c.DaysAfterCampaignEnrollment,
		c.UseRepeatReminderEmail, c.RepeatReminderEmailTemplate, c.IntervalDaysForRepeatReminderEmail,
		c.UseReminderEmailComingDue, c.EmailTemplateComingDue, c.DaysBeforeComingDue,
		c.UseReminderEmailOverdue, c.EmailTemplateOverdue, c.DaysAfterOverdue,
		c.ImportHash, c.CreatedBy, c.UpdatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *pgCampaignRepository) Update(ctx context.Context, q repository.Querier, c *domain.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	normalizeCampaign(c)

	tag, err := q.Exec(ctx, updateCampaignSQL,
		c.TenantID, c.ID, c.Name, c.Description, c.Type, c.Audience, c.DueDate, c.Progress, c.TotalRecipients,
		c.QuestionnaireID, c.Questionnaire, c.Vendors, c.Clients, c.EmailTemplateID,
		c.EmailTemplate.To, c.EmailTemplate.CC, c.EmailTemplate.BCC, c.EmailTemplate.FromEmailAddress,
		c.EmailTemplate.Subject, c.EmailTemplate.Body, c.EmailTemplate.Attachments,
		c.UseReminderEmailAfterCampaignEnrollment, c.CampaignEnrollmentEmailTemplate, c.DaysAfterCampaignEnrollment,
		c.UseRepeatReminderEmail, c.RepeatReminderEmailTemplate, c.IntervalDaysForRepeatReminderEmail,
		c.UseReminderEmailComingDue, c.EmailTemplateComingDue, c.DaysBeforeComingDue,
		c.UseReminderEmailOverdue, c.EmailTemplateOverdue, c.DaysAfterOverdue,
		c.UpdatedBy, c.UpdatedAt,
	)
	if err != nil {
		return translateWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCampaignRepository) UpdateStatus(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID, status domain.CampaignStatus, updatedBy uuid.UUID) error {
	tag, err := q.Exec(ctx, updateCampaignStatusSQL, tenantID, id, status, updatedBy, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCampaignRepository) Delete(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) error {
	tag, err := q.Exec(ctx, deleteCampaignSQL, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCampaignRepository) FindByID(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) (*domain.Campaign, error) {
	return r.findOne(ctx, q, findCampaignSQL, tenantID, id)
}

func (r *pgCampaignRepository) FindByIDForUpdate(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) (*domain.Campaign, error) {
	return r.findOne(ctx, q, findCampaignForUpdate, tenantID, id)
}

func (r *pgCampaignRepository) findOne(ctx context.Context, q repository.Querier, query string, tenantID, id uuid.UUID) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	if err := q.QueryRow(ctx, query, tenantID, id).Scan(campaignScanTargets(c)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *pgCampaignRepository) FindAndCountAll(ctx context.Context, q repository.Querier, tenantID uuid.UUID, filter domain.CampaignFilter) ([]*domain.Campaign, int, error) {
	w := newWhere(tenantID)
	if filter.Name != "" {
		w.add("name ILIKE %s", "%"+filter.Name+"%")
	}
	if filter.Type != "" {
		w.add("type = %s", filter.Type)
	}
	if filter.Audience != "" {
		w.add("audience = %s", filter.Audience)
	}
	if filter.Status != "" {
		w.add("status = %s", filter.Status)
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM campaigns WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	query := "SELECT " + campaignColumns + " FROM campaigns WHERE " + w.sql() +
		" ORDER BY " + orderClause(filter.OrderBy, campaignOrderColumns, "created_at DESC") +
		w.page(filter.Limit, filter.Offset)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c := &domain.Campaign{}
		if err := rows.Scan(campaignScanTargets(c)...); err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

func (r *pgCampaignRepository) FindAllAutocomplete(ctx context.Context, q repository.Querier, tenantID uuid.UUID, search string, limit int) ([]domain.AutocompleteItem, error) {
	w := newWhere(tenantID)
	if search = strings.TrimSpace(search); search != "" {
		if id, err := uuid.Parse(search); err == nil {
			w.add("id = %s", id)
		} else {
			w.add("name ILIKE %s", "%"+search+"%")
		}
	}
	query := "SELECT id, name FROM campaigns WHERE " + w.sql() + " ORDER BY name ASC" + w.page(limit, 0)

	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.AutocompleteItem{}
	for rows.Next() {
		var item domain.AutocompleteItem
		if err := rows.Scan(&item.ID, &item.Label); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCampaignRepository) ExistsByImportHash(ctx context.Context, q repository.Querier, tenantID uuid.UUID, importHash string) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, campaignImportHashSQL, tenantID, importHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Array columns are NOT NULL, so nil slices are written as empty arrays.
func normalizeCampaign(c *domain.Campaign) {
	c.Vendors = nonNilUUIDs(c.Vendors)
	c.Clients = nonNilUUIDs(c.Clients)
	c.EmailTemplate.Attachments = nonNilUUIDs(c.EmailTemplate.Attachments)
	c.EmailTemplate.To = nonNilStrings(c.EmailTemplate.To)
	c.EmailTemplate.CC = nonNilStrings(c.EmailTemplate.CC)
	c.EmailTemplate.BCC = nonNilStrings(c.EmailTemplate.BCC)
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEntry, pgErr.ConstraintName)
	}
	return err
}
