package app

import (
	"context"
	"fmt"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

// recipients are the vendors and clients a send reaches, users populated.
type recipients struct {
	vendors []*domain.Vendor
	clients []*domain.Client
}

func (r recipients) count() int {
	return len(r.vendors) + len(r.clients)
}

// recipientResolver re-validates the campaign's stored recipient ids against the
// tenant and loads what survives.
type recipientResolver struct {
	vendors repository.VendorRepository
	clients repository.ClientRepository
}

func (r *recipientResolver) resolve(ctx context.Context, q repository.Querier, c *domain.Campaign) (recipients, error) {
	vendorIDs, err := r.vendors.FilterIDsInTenant(ctx, q, c.TenantID, c.Vendors)
	if err != nil {
		return recipients{}, fmt.Errorf("filter campaign vendors: %w", err)
	}
	clientIDs, err := r.clients.FilterIDsInTenant(ctx, q, c.TenantID, c.Clients)
	if err != nil {
		return recipients{}, fmt.Errorf("filter campaign clients: %w", err)
	}

	vendors, err := r.vendors.FindAllByIDs(ctx, q, c.TenantID, vendorIDs)
	if err != nil {
		return recipients{}, fmt.Errorf("load campaign vendors: %w", err)
	}
	clients, err := r.clients.FindAllByIDs(ctx, q, c.TenantID, clientIDs)
	if err != nil {
		return recipients{}, fmt.Errorf("load campaign clients: %w", err)
	}
	return recipients{vendors: vendors, clients: clients}, nil
}
