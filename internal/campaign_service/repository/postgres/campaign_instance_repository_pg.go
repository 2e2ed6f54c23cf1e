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

const instanceColumns = `id, tenant_id, reference, campaign_id, name, due_date, status, progress,
	questionnaire, vendor_id, client_id, user_ids, created_by, created_at, updated_at`

const (
	insertInstanceSQL = `INSERT INTO campaign_instances (` + instanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	findInstanceSQL = `SELECT ` + instanceColumns + ` FROM campaign_instances WHERE tenant_id = $1 AND id = $2`
)

type pgCampaignInstanceRepository struct{}

// NewPgCampaignInstanceRepository creates a campaign instance repository for PostgreSQL.
func NewPgCampaignInstanceRepository() repository.CampaignInstanceRepository {
	return &pgCampaignInstanceRepository{}
}

func instanceScanTargets(i *domain.CampaignInstance) []any {
	return []any{
		&i.ID, &i.TenantID, &i.Reference, &i.CampaignID, &i.Name, &i.DueDate, &i.Status, &i.Progress,
		&i.Questionnaire, &i.VendorID, &i.ClientID, &i.UserIDs, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
	}
}

func (r *pgCampaignInstanceRepository) Create(ctx context.Context, q repository.Querier, i *domain.CampaignInstance) error {
	if (i.VendorID == nil) == (i.ClientID == nil) {
		return fmt.Errorf("%w: instance needs exactly one of vendor or client", domain.ErrValidation)
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	now := time.Now().UTC()
	i.CreatedAt = now
	i.UpdatedAt = now
	i.UserIDs = nonNilUUIDs(i.UserIDs)

	_, err := q.Exec(ctx, insertInstanceSQL,
		i.ID, i.TenantID, i.Reference, i.CampaignID, i.Name, i.DueDate, i.Status, i.Progress,
		i.Questionnaire, i.VendorID, i.ClientID, i.UserIDs, i.CreatedBy, i.CreatedAt, i.UpdatedAt,
	)
	return translateWriteError(err)
}

func (r *pgCampaignInstanceRepository) FindByID(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) (*domain.CampaignInstance, error) {
	i := &domain.CampaignInstance{}
	if err := q.QueryRow(ctx, findInstanceSQL, tenantID, id).Scan(instanceScanTargets(i)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *pgCampaignInstanceRepository) FindAndCountAll(ctx context.Context, q repository.Querier, tenantID uuid.UUID, filter domain.CampaignInstanceFilter) ([]*domain.CampaignInstance, int, error) {
	w := newWhere(tenantID)
	if filter.CampaignID != nil {
		w.add("campaign_id = %s", *filter.CampaignID)
	}
	if filter.VendorID != nil {
		w.add("vendor_id = %s", *filter.VendorID)
	}
	if filter.ClientID != nil {
		w.add("client_id = %s", *filter.ClientID)
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM campaign_instances WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaign instances: %w", err)
	}

	query := "SELECT " + instanceColumns + " FROM campaign_instances WHERE " + w.sql() +
		" ORDER BY reference ASC, created_at ASC, id ASC" + w.page(filter.Limit, filter.Offset)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaign instances: %w", err)
	}
	defer rows.Close()

	var instances []*domain.CampaignInstance
	for rows.Next() {
		i := &domain.CampaignInstance{}
		if err := rows.Scan(instanceScanTargets(i)...); err != nil {
			return nil, 0, err
		}
		instances = append(instances, i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return instances, total, nil
}
