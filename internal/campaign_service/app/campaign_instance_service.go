package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
	"github.com/vendorrisk/golang_services/internal/platform/database"
)

// CampaignInstanceService exposes the instances produced by sends. Instances are
// only written by CampaignService.Send.
type CampaignInstanceService struct {
	db        database.Querier
	instances repository.CampaignInstanceRepository
}

func NewCampaignInstanceService(db database.Querier, instances repository.CampaignInstanceRepository) *CampaignInstanceService {
	return &CampaignInstanceService{db: db, instances: instances}
}

func (s *CampaignInstanceService) FindByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CampaignInstance, error) {
	return s.instances.FindByID(ctx, s.db, actor.TenantID, id)
}

func (s *CampaignInstanceService) FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignInstanceFilter) ([]*domain.CampaignInstance, int, error) {
	return s.instances.FindAndCountAll(ctx, s.db, actor.TenantID, filter)
}
