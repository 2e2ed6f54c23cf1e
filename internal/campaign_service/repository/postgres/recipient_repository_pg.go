package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

const (
	findVendorsSQL = `SELECT id, tenant_id, name, COALESCE(support_email, ''), COALESCE(info_sec_email, ''), COALESCE(privacy_email, '')
		FROM vendors WHERE tenant_id = $1 AND id = ANY($2)`
	countVendorsWithoutEmailSQL = `SELECT COUNT(*) FROM vendors WHERE tenant_id = $1 AND id = ANY($2)
		AND (NULLIF(support_email, '') IS NULL OR NULLIF(info_sec_email, '') IS NULL)`

	findClientsSQL = `SELECT id, tenant_id, name, COALESCE(info_sec_email, ''), COALESCE(privacy_email, '')
		FROM clients WHERE tenant_id = $1 AND id = ANY($2)`
	countClientsWithoutEmailSQL = `SELECT COUNT(*) FROM clients WHERE tenant_id = $1 AND id = ANY($2)
		AND NULLIF(info_sec_email, '') IS NULL`
)

func filterIDsSQL(table string) string {
	return fmt.Sprintf(`SELECT id FROM %s WHERE tenant_id = $1 AND id = ANY($2)`, table)
}

func recipientUsersSQL(joinTable, ownerColumn string) string {
	return fmt.Sprintf(`SELECT j.%s, u.id, u.email, u.first_name, u.last_name, u.full_name, u.phone_number
		FROM %s j JOIN users u ON u.id = j.user_id
		WHERE j.%s = ANY($1) ORDER BY u.email ASC`, ownerColumn, joinTable, ownerColumn)
}

type pgVendorRepository struct{}

// NewPgVendorRepository creates a vendor repository for PostgreSQL.
func NewPgVendorRepository() repository.VendorRepository {
	return &pgVendorRepository{}
}

func (r *pgVendorRepository) FilterIDsInTenant(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return filterIDsInTenant(ctx, q, "vendors", tenantID, ids)
}

func (r *pgVendorRepository) FindAllByIDs(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Vendor, error) {
	if len(ids) == 0 {
		return []*domain.Vendor{}, nil
	}
	rows, err := q.Query(ctx, findVendorsSQL, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find vendors: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Vendor, len(ids))
	for rows.Next() {
		v := &domain.Vendor{}
		if err := rows.Scan(&v.ID, &v.TenantID, &v.Name, &v.SupportEmail, &v.InfoSecEmail, &v.PrivacyEmail); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		byID[v.ID] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := keepOrder(ids, presence(byID))
	users, err := loadRecipientUsers(ctx, q, "vendor_users", "vendor_id", ordered)
	if err != nil {
		return nil, err
	}

	vendors := make([]*domain.Vendor, 0, len(byID))
	for _, id := range ordered {
		v := byID[id]
		v.Users = users[id]
		vendors = append(vendors, v)
	}
	return vendors, nil
}

func (r *pgVendorRepository) CountWithoutEmail(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) (int, error) {
	return countIn(ctx, q, countVendorsWithoutEmailSQL, tenantID, ids)
}

type pgClientRepository struct{}

// NewPgClientRepository creates a client repository for PostgreSQL.
func NewPgClientRepository() repository.ClientRepository {
	return &pgClientRepository{}
}

func (r *pgClientRepository) FilterIDsInTenant(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return filterIDsInTenant(ctx, q, "clients", tenantID, ids)
}

func (r *pgClientRepository) FindAllByIDs(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Client, error) {
	if len(ids) == 0 {
		return []*domain.Client{}, nil
	}
	rows, err := q.Query(ctx, findClientsSQL, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Client, len(ids))
	for rows.Next() {
		c := &domain.Client{}
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.InfoSecEmail, &c.PrivacyEmail); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan client: %w", err)
		}
		byID[c.ID] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := keepOrder(ids, presence(byID))
	users, err := loadRecipientUsers(ctx, q, "client_users", "client_id", ordered)
	if err != nil {
		return nil, err
	}

	clients := make([]*domain.Client, 0, len(byID))
	for _, id := range ordered {
		c := byID[id]
		c.Users = users[id]
		clients = append(clients, c)
	}
	return clients, nil
}

func (r *pgClientRepository) CountWithoutEmail(ctx context.Context, q repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) (int, error) {
	return countIn(ctx, q, countClientsWithoutEmailSQL, tenantID, ids)
}

func filterIDsInTenant(ctx context.Context, q repository.Querier, table string, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	rows, err := q.Query(ctx, filterIDsSQL(table), tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("filter %s ids: %w", table, err)
	}
	defer rows.Close()

	present := make(map[uuid.UUID]struct{}, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		present[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keepOrder(ids, present), nil
}

func loadRecipientUsers(ctx context.Context, q repository.Querier, joinTable, ownerColumn string, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.User, error) {
	users := make(map[uuid.UUID][]domain.User, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return users, nil
	}
	rows, err := q.Query(ctx, recipientUsersSQL(joinTable, ownerColumn), ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", joinTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner uuid.UUID
		var u domain.User
		if err := rows.Scan(&owner, &u.ID, &u.Email, &u.FirstName, &u.LastName, &u.FullName, &u.PhoneNumber); err != nil {
			return nil, err
		}
		users[owner] = append(users[owner], u)
	}
	return users, rows.Err()
}

func countIn(ctx context.Context, q repository.Querier, query string, tenantID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	if err := q.QueryRow(ctx, query, tenantID, ids).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func presence[T any](m map[uuid.UUID]T) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(m))
	for id := range m {
		out[id] = struct{}{}
	}
	return out
}
