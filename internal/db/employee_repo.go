package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"hrdocs/internal/types"
)

// EmployeeRepository provides read access to the employees table. The
// compliance engine consumes whole-tenant snapshots, so the repository only
// exposes list queries.
type EmployeeRepository struct {
	db DBTX
}

func NewEmployeeRepository(db DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `e.id, e.tenant_id, e.name, e.email, e.status,
	e.employment_type, e.hire_date`

func scanEmployee(row pgx.Row) (types.Employee, error) {
	var emp types.Employee
	err := row.Scan(
		&emp.ID,
		&emp.TenantID,
		&emp.Name,
		&emp.Email,
		&emp.Status,
		&emp.EmploymentType,
		&emp.HireDate,
	)
	return emp, err
}

// ListByTenant returns every employee of the tenant ordered by hire date.
func (r *EmployeeRepository) ListByTenant(ctx context.Context, tenantID string) ([]types.Employee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+employeeColumns+`
		 FROM employees e
		 WHERE e.tenant_id = $1
		 ORDER BY e.hire_date, e.id`,
		tenantID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list employees", err)
	}
	defer rows.Close()

	var employees []types.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan employee", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate employees", err)
	}
	return employees, nil
}

// CountByTenant returns the number of employees of the tenant. Used by the
// employee-cap gate check.
func (r *EmployeeRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM employees WHERE tenant_id = $1`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count employees", err)
	}
	return count, nil
}
