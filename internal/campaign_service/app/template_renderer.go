package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
)

type codePattern struct {
	re    *regexp.Regexp
	value func(domain.User) string
}

var (
	userCodePatterns = compileUserCodes(domain.UserCodes)
	emailCodePattern = placeholder(domain.EmailCode)
)

func placeholder(code string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\[\[` + regexp.QuoteMeta(code) + `\]\]`)
}

func compileUserCodes(codes []domain.UserCode) []codePattern {
	out := make([]codePattern, 0, len(codes))
	for _, c := range codes {
		out = append(out, codePattern{re: placeholder(c.Code), value: c.Value})
	}
	return out
}

// TemplateRenderer personalises an email body for one recipient address.
type TemplateRenderer struct {
	users repository.UserRepository
}

func NewTemplateRenderer(users repository.UserRepository) *TemplateRenderer {
	return &TemplateRenderer{users: users}
}

// Render substitutes [[CODE]] placeholders. User codes are only replaced when
// the address belongs to a tenant user; [[EMAIL]] is always replaced. Unknown
// codes are left as written.
func (r *TemplateRenderer) Render(ctx context.Context, q repository.Querier, tenantID uuid.UUID, body, address string) (string, error) {
	if body == "" {
		return body, nil
	}

	user, err := r.users.FindByEmail(ctx, q, tenantID, address)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("lookup user %s: %w", address, err)
	}

	out := body
	if user != nil {
		for _, p := range userCodePatterns {
			out = p.re.ReplaceAllLiteralString(out, p.value(*user))
		}
	}
	return emailCodePattern.ReplaceAllLiteralString(out, address), nil
}
