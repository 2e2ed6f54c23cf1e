package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

const emailColumns = `id, tenant_id, campaign_id, to_email_address, from_email_address, subject, body,
	sent, import_hash, created_by, updated_by, created_at, updated_at`

const (
	insertEmailSQL = `INSERT INTO campaign_instance_emails (` + emailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	updateEmailSQL = `UPDATE campaign_instance_emails SET
		campaign_id = $3, to_email_address = $4, from_email_address = $5, subject = $6, body = $7,
		sent = $8, updated_by = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2`
	markEmailSentSQL = `UPDATE campaign_instance_emails SET sent = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2`
	findEmailSQL       = `SELECT ` + emailColumns + ` FROM campaign_instance_emails WHERE tenant_id = $1 AND id = $2`
	emailImportHashSQL = `SELECT EXISTS (SELECT 1 FROM campaign_instance_emails WHERE tenant_id = $1 AND import_hash = $2)`
)

type pgCampaignInstanceEmailRepository struct{}

// NewPgCampaignInstanceEmailRepository creates the delivery record store for PostgreSQL.
func NewPgCampaignInstanceEmailRepository() repository.CampaignInstanceEmailRepository {
	return &pgCampaignInstanceEmailRepository{}
}

func emailScanTargets(e *domain.CampaignInstanceEmail) []any {
	return []any{
		&e.ID, &e.TenantID, &e.CampaignID, &e.ToEmailAddress, &e.FromEmailAddress, &e.Subject, &e.Body,
		&e.Sent, &e.ImportHash, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt,
	}
}

func (r *pgCampaignInstanceEmailRepository) Create(ctx context.Context, q repository.Querier, e *domain.CampaignInstanceEmail) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := q.Exec(ctx, insertEmailSQL,
		e.ID, e.TenantID, e.CampaignID, e.ToEmailAddress, e.FromEmailAddress, e.Subject, e.Body,
		e.Sent, e.ImportHash, e.CreatedBy, e.UpdatedBy, e.CreatedAt, e.UpdatedAt,
	)
	return translateWriteError(err)
}

func (r *pgCampaignInstanceEmailRepository) Update(ctx context.Context, q repository.Querier, e *domain.CampaignInstanceEmail) error {
	e.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, updateEmailSQL,
		e.TenantID, e.ID, e.CampaignID, e.ToEmailAddress, e.FromEmailAddress, e.Subject, e.Body,
		e.Sent, e.UpdatedBy, e.UpdatedAt,
	)
	if err != nil {
		return translateWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkSent stamps the transmission time on a recorded email.
func (r *pgCampaignInstanceEmailRepository) MarkSent(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID, sent time.Time) error {
	tag, err := q.Exec(ctx, markEmailSentSQL, tenantID, id, sent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCampaignInstanceEmailRepository) FindByID(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) (*domain.CampaignInstanceEmail, error) {
	e := &domain.CampaignInstanceEmail{}
	if err := q.QueryRow(ctx, findEmailSQL, tenantID, id).Scan(emailScanTargets(e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *pgCampaignInstanceEmailRepository) FindAndCountAll(ctx context.Context, q repository.Querier, tenantID uuid.UUID, filter domain.CampaignInstanceEmailFilter) ([]*domain.CampaignInstanceEmail, int, error) {
	w := newWhere(tenantID)
	if filter.CampaignID != nil {
		w.add("campaign_id = %s", *filter.CampaignID)
	}
	if filter.ToEmailAddress != "" {
		w.add("to_email_address ILIKE %s", "%"+filter.ToEmailAddress+"%")
	}
	if filter.Sent != nil {
		if *filter.Sent {
			w.conds = append(w.conds, "sent IS NOT NULL")
		} else {
			w.conds = append(w.conds, "sent IS NULL")
		}
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM campaign_instance_emails WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaign instance emails: %w", err)
	}

	query := "SELECT " + emailColumns + " FROM campaign_instance_emails WHERE " + w.sql() +
		" ORDER BY created_at DESC" + w.page(filter.Limit, filter.Offset)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaign instance emails: %w", err)
	}
	defer rows.Close()

	var emails []*domain.CampaignInstanceEmail
	for rows.Next() {
		e := &domain.CampaignInstanceEmail{}
		if err := rows.Scan(emailScanTargets(e)...); err != nil {
			return nil, 0, err
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return emails, total, nil
}

func (r *pgCampaignInstanceEmailRepository) ExistsByImportHash(ctx context.Context, q repository.Querier, tenantID uuid.UUID, importHash string) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, emailImportHashSQL, tenantID, importHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
