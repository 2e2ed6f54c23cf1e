package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

const findUserByEmailSQL = `SELECT u.id, u.email, u.first_name, u.last_name, u.full_name, u.phone_number
	FROM users u JOIN tenant_users tu ON tu.user_id = u.id
	WHERE tu.tenant_id = $1 AND LOWER(u.email) = $2`

type pgUserRepository struct{}

// NewPgUserRepository creates a user lookup for PostgreSQL.
func NewPgUserRepository() repository.UserRepository {
	return &pgUserRepository{}
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, q repository.Querier, tenantID uuid.UUID, email string) (*domain.User, error) {
	u := &domain.User{}
	err := q.QueryRow(ctx, findUserByEmailSQL, tenantID, strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.FullName, &u.PhoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
