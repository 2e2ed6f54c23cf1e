package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

// instanceBroadcaster creates one campaign instance per recipient of a
// questionnaire campaign, vendors first. Instances share the campaign reference.
type instanceBroadcaster struct {
	instances repository.CampaignInstanceRepository
}

func (b *instanceBroadcaster) broadcast(ctx context.Context, q repository.Querier, actor domain.Actor, c *domain.Campaign, rcpts recipients) (int, error) {
	if c.Type != domain.CampaignTypeQuestionnaire {
		return 0, nil
	}

	created := 0
	for _, v := range rcpts.vendors {
		vendorID := v.ID
		if err := b.create(ctx, q, actor, c, &vendorID, nil, v.Users); err != nil {
			return created, fmt.Errorf("create instance for vendor %s: %w", v.ID, err)
		}
		created++
	}
	for _, cl := range rcpts.clients {
		clientID := cl.ID
		if err := b.create(ctx, q, actor, c, nil, &clientID, cl.Users); err != nil {
			return created, fmt.Errorf("create instance for client %s: %w", cl.ID, err)
		}
		created++
	}
	return created, nil
}

func (b *instanceBroadcaster) create(ctx context.Context, q repository.Querier, actor domain.Actor, c *domain.Campaign, vendorID, clientID *uuid.UUID, users []domain.User) error {
	createdBy := actor.UserID
	return b.instances.Create(ctx, q, &domain.CampaignInstance{
		TenantID:      c.TenantID,
		Reference:     c.Reference,
		CampaignID:    c.ID,
		Name:          c.Name,
		DueDate:       c.DueDate,
		Status:        domain.InstanceStatusNotStarted,
		Progress:      0,
		Questionnaire: c.Questionnaire,
		VendorID:      vendorID,
		ClientID:      clientID,
		UserIDs:       domain.UserIDs(users),
		CreatedBy:     &createdBy,
	})
}
