package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

// Querier is the subset of pgxpool.Pool used to read permission overrides.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const permissionsQuery = `
        SELECT resource, role
        FROM resource_permissions
        ORDER BY resource, role`

// LoadPermissionsFromPostgres reads resource_permissions rows grouped by resource.
func LoadPermissionsFromPostgres(ctx context.Context, q Querier) (map[string][]domain.Role, error) {
	rows, err := q.Query(ctx, permissionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query resource_permissions: %w", err)
	}
	defer rows.Close()

	out := map[string][]domain.Role{}
	for rows.Next() {
		var resource, role string
		if err := rows.Scan(&resource, &role); err != nil {
			return nil, err
		}
		out[resource] = append(out[resource], domain.Role(role))
	}
	return out, rows.Err()
}

// ApplyPostgres overlays the rows stored in Postgres on reg.
func ApplyPostgres(ctx context.Context, reg *Registry, q Querier) (*Registry, error) {
	overrides, err := LoadPermissionsFromPostgres(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return reg, nil
	}
	return reg.WithPermissions(overrides)
}
