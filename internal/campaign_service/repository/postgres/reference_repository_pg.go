package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

const nextReferenceSQL = `INSERT INTO entity_references (tenant_id, entity, reference) VALUES ($1, $2, 1)
	ON CONFLICT (tenant_id, entity) DO UPDATE SET reference = entity_references.reference + 1
	RETURNING reference`

type pgReferenceRepository struct{}

// NewPgReferenceRepository creates the per-tenant reference counter.
func NewPgReferenceRepository() repository.ReferenceRepository {
	return &pgReferenceRepository{}
}

func (r *pgReferenceRepository) Next(ctx context.Context, q repository.Querier, tenantID uuid.UUID, entity string) (int64, error) {
	var ref int64
	if err := q.QueryRow(ctx, nextReferenceSQL, tenantID, entity).Scan(&ref); err != nil {
		return 0, err
	}
	return ref, nil
}
