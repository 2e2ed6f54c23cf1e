package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

const (
	emailTemplateExistsSQL = `SELECT EXISTS (SELECT 1 FROM email_templates WHERE tenant_id = $1 AND id = $2)`
	insertEmailTemplateSQL = `INSERT INTO email_templates (id, tenant_id, name, from_email_address, subject, body, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	findEmailTemplateSQL = `SELECT id, tenant_id, name, from_email_address, subject, body, created_by, created_at, updated_at
		FROM email_templates WHERE tenant_id = $1 AND id = $2`
)

type pgEmailTemplateRepository struct{}

// NewPgEmailTemplateRepository creates an email template repository for PostgreSQL.
func NewPgEmailTemplateRepository() repository.EmailTemplateRepository {
	return &pgEmailTemplateRepository{}
}

// FilterIDInTenant returns id when it belongs to the tenant and nil otherwise.
func (r *pgEmailTemplateRepository) FilterIDInTenant(ctx context.Context, q repository.Querier, tenantID uuid.UUID, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	var exists bool
	if err := q.QueryRow(ctx, emailTemplateExistsSQL, tenantID, *id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	kept := *id
	return &kept, nil
}

func (r *pgEmailTemplateRepository) Create(ctx context.Context, q repository.Querier, t *domain.EmailTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := q.Exec(ctx, insertEmailTemplateSQL,
		t.ID, t.TenantID, t.Name, t.FromEmailAddress, t.Subject, t.Body, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	return translateWriteError(err)
}

func (r *pgEmailTemplateRepository) FindByID(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) (*domain.EmailTemplate, error) {
	t := &domain.EmailTemplate{}
	err := q.QueryRow(ctx, findEmailTemplateSQL, tenantID, id).Scan(
		&t.ID, &t.TenantID, &t.Name, &t.FromEmailAddress, &t.Subject, &t.Body, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

type pgFileRepository struct{}

// NewPgFileRepository creates the attachment lookup for PostgreSQL.
func NewPgFileRepository() repository.FileRepository {
	return &pgFileRepository{}
}

func (r *pgFileRepository) FilterIDsInTenant(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return filterIDsInTenant(ctx, q, "files", tenantID, ids)
}
