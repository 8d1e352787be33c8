package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdocs/internal/types"
)

// TenantRepository provides data access for the tenants table.
type TenantRepository struct {
	db DBTX
}

// NewTenantRepository creates a new TenantRepository backed by the given
// database connection (pool or transaction).
func NewTenantRepository(db DBTX) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = `t.id, t.name, t.email, t.plan, t.plan_started_at,
	t.plan_expires_at, t.max_employees, t.created_at, t.updated_at`

func scanTenant(row pgx.Row) (*types.Tenant, error) {
	var tenant types.Tenant
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Email,
		&tenant.Plan,
		&tenant.PlanStartedAt,
		&tenant.PlanExpiresAt,
		&tenant.MaxEmployees,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByID retrieves a tenant by its ID.
// Returns ErrCodeNotFoundTenant if no tenant is found.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*types.Tenant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+tenantColumns+`
		 FROM tenants t
		 WHERE t.id = $1`,
		id,
	)

	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTenant, "tenant not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve tenant", err)
	}
	return tenant, nil
}

// ListActive returns every tenant whose effective plan could include the
// notifications feature: a paid stored plan with an unexpired window. Used by
// the digest fan-out tool; the per-tenant gate check still decides.
func (r *TenantRepository) ListActive(ctx context.Context) ([]types.Tenant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tenantColumns+`
		 FROM tenants t
		 WHERE t.plan <> 'free'
		   AND t.plan_expires_at IS NOT NULL
		   AND t.plan_expires_at > NOW()
		 ORDER BY t.id`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list active tenants", err)
	}
	defer rows.Close()

	var tenants []types.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan tenant", err)
		}
		tenants = append(tenants, *tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate tenants", err)
	}
	return tenants, nil
}

// UpdatePlan overwrites the tenant's plan window and employee cap. Redeeming
// a second code replaces the current window rather than stacking onto it.
func (r *TenantRepository) UpdatePlan(
	ctx context.Context,
	id string,
	plan types.PlanTier,
	startedAt time.Time,
	expiresAt time.Time,
	maxEmployees int,
) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tenants
		 SET plan = $1,
		     plan_started_at = $2,
		     plan_expires_at = $3,
		     max_employees = $4,
		     updated_at = NOW()
		 WHERE id = $5`,
		plan,
		startedAt,
		expiresAt,
		maxEmployees,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update tenant plan", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTenant, "tenant not found", nil)
	}
	return nil
}
