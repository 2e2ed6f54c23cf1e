package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/platform/database"
)

// Every method takes the Querier to run on, so callers decide whether the call
// joins a transaction (pgx.Tx) or runs on the pool.
type Querier = database.Querier

type CampaignRepository interface {
	Create(ctx context.Context, q Querier, c *domain.Campaign) error
	Update(ctx context.Context, q Querier, c *domain.Campaign) error
	UpdateStatus(ctx context.Context, q Querier, tenantID, id uuid.UUID, status domain.CampaignStatus, updatedBy uuid.UUID) error
	Delete(ctx context.Context, q Querier, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, q Querier, tenantID, id uuid.UUID) (*domain.Campaign, error)
	// FindByIDForUpdate locks the campaign row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, q Querier, tenantID, id uuid.UUID) (*domain.Campaign, error)
	FindAndCountAll(ctx context.Context, q Querier, tenantID uuid.UUID, filter domain.CampaignFilter) ([]*domain.Campaign, int, error)
	FindAllAutocomplete(ctx context.Context, q Querier, tenantID uuid.UUID, search string, limit int) ([]domain.AutocompleteItem, error)
	ExistsByImportHash(ctx context.Context, q Querier, tenantID uuid.UUID, importHash string) (bool, error)
}

type VendorRepository interface {
	// FilterIDsInTenant keeps the ids that exist in the tenant, preserving input order.
	FilterIDsInTenant(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	// FindAllByIDs loads the vendors with their users populated.
	FindAllByIDs(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Vendor, error)
	// CountWithoutEmail counts vendors missing a support or infoSec address.
	CountWithoutEmail(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) (int, error)
}

type ClientRepository interface {
	FilterIDsInTenant(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	FindAllByIDs(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Client, error)
	// CountWithoutEmail counts clients missing an infoSec address.
	CountWithoutEmail(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) (int, error)
}

type UserRepository interface {
	// FindByEmail matches case-insensitively among the tenant's members.
	FindByEmail(ctx context.Context, q Querier, tenantID uuid.UUID, email string) (*domain.User, error)
}

type EmailTemplateRepository interface {
	FilterIDInTenant(ctx context.Context, q Querier, tenantID uuid.UUID, id *uuid.UUID) (*uuid.UUID, error)
	Create(ctx context.Context, q Querier, t *domain.EmailTemplate) error
	FindByID(ctx context.Context, q Querier, tenantID, id uuid.UUID) (*domain.EmailTemplate, error)
}

type FileRepository interface {
	FilterIDsInTenant(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

type ReferenceRepository interface {
	// Next atomically increments and returns the tenant counter for entity.
	Next(ctx context.Context, q Querier, tenantID uuid.UUID, entity string) (int64, error)
}

type CampaignInstanceRepository interface {
	Create(ctx context.Context, q Querier, i *domain.CampaignInstance) error
	FindByID(ctx context.Context, q Querier, tenantID, id uuid.UUID) (*domain.CampaignInstance, error)
	FindAndCountAll(ctx context.Context, q Querier, tenantID uuid.UUID, filter domain.CampaignInstanceFilter) ([]*domain.CampaignInstance, int, error)
}

type CampaignInstanceEmailRepository interface {
	Create(ctx context.Context, q Querier, e *domain.CampaignInstanceEmail) error
	Update(ctx context.Context, q Querier, e *domain.CampaignInstanceEmail) error
	MarkSent(ctx context.Context, q Querier, tenantID, id uuid.UUID, sent time.Time) error
	FindByID(ctx context.Context, q Querier, tenantID, id uuid.UUID) (*domain.CampaignInstanceEmail, error)
	FindAndCountAll(ctx context.Context, q Querier, tenantID uuid.UUID, filter domain.CampaignInstanceEmailFilter) ([]*domain.CampaignInstanceEmail, int, error)
	ExistsByImportHash(ctx context.Context, q Querier, tenantID uuid.UUID, importHash string) (bool, error)
}

// AuditLogRepository stores the activity trail outside the relational database.
type AuditLogRepository interface {
	Log(ctx context.Context, entry domain.AuditLog) error
}
