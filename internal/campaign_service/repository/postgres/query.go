package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// where accumulates tenant-scoped conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

func newWhere(tenantID uuid.UUID) *where {
	return &where{conds: []string{"tenant_id = $1"}, args: []any{tenantID}}
}

// add appends a condition; format must contain one %s for the placeholder.
func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) sql() string {
	return strings.Join(w.conds, " AND ")
}

func (w *where) page(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}
	return b.String()
}

// orderClause turns "field_ASC"/"field_DESC" into SQL using an allow-list.
func orderClause(orderBy string, columns map[string]string, fallback string) string {
	field, dir, found := strings.Cut(orderBy, "_")
	col, ok := columns[field]
	if !found || !ok {
		return fallback
	}
	switch strings.ToUpper(dir) {
	case "ASC":
		return col + " ASC"
	case "DESC":
		return col + " DESC"
	default:
		return fallback
	}
}

func nonNilUUIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// keepOrder returns the members of ids found in present, in the order of ids, without duplicates.
func keepOrder(ids []uuid.UUID, present map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(present))
	seen := make(map[uuid.UUID]struct{}, len(present))
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
