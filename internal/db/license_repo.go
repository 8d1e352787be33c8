package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrdocs/internal/types"
)

// LicenseCodeRepository provides data access for the license_codes table.
//
// Key invariant: Claim uses a conditional UPDATE on used_by IS NULL so that
// concurrent redemption attempts on the same code resolve to exactly one
// winner at the storage layer, with no application-level locking.
type LicenseCodeRepository struct {
	db DBTX
}

// NewLicenseCodeRepository creates a new LicenseCodeRepository backed by the
// given database connection (pool or transaction).
func NewLicenseCodeRepository(db DBTX) *LicenseCodeRepository {
	return &LicenseCodeRepository{db: db}
}

// licenseCodeColumns defines the standard set of columns selected for license
// code queries. Used consistently across all query methods to avoid column drift.
const licenseCodeColumns = `c.code, c.plan, c.duration_days, c.used_by, c.used_at,
	c.created_at, c.expires_at`

// scanLicenseCode scans a single license code row. The columns must match the
// order defined in licenseCodeColumns.
func scanLicenseCode(row pgx.Row) (*types.LicenseCode, error) {
	var code types.LicenseCode
	err := row.Scan(
		&code.Code,
		&code.Plan,
		&code.DurationDays,
		&code.UsedBy,
		&code.UsedAt,
		&code.CreatedAt,
		&code.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// Create inserts a new license code record. The caller must normalize the
// code literal before calling; codes are stored uppercase.
func (r *LicenseCodeRepository) Create(ctx context.Context, code *types.LicenseCode) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO license_codes (code, plan, duration_days, created_at, expires_at)
		 VALUES ($1, $2, $3, NOW(), $4)`,
		code.Code,
		code.Plan,
		code.DurationDays,
		code.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.NewAppError(types.ErrCodeConflictDuplicateCode,
				"license code literal already exists", err)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create license code", err)
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (error code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// GetByCode retrieves a license code by its canonical (uppercase) literal.
// Returns ErrCodeNotFoundLicenseCode if no such code exists.
func (r *LicenseCodeRepository) GetByCode(ctx context.Context, code string) (*types.LicenseCode, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+licenseCodeColumns+`
		 FROM license_codes c
		 WHERE c.code = $1`,
		code,
	)

	lc, err := scanLicenseCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundLicenseCode, "license code not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve license code", err)
	}
	return lc, nil
}

// Claim atomically marks the code as used by the given tenant, conditioned on
// the code still being unclaimed at write time. When two calls race on the
// same code, the database guarantees at most one UPDATE matches; the loser
// observes zero rows affected and gets ErrCodeConflictCodeUsed.
func (r *LicenseCodeRepository) Claim(ctx context.Context, code, tenantID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE license_codes
		 SET used_by = $1,
		     used_at = NOW()
		 WHERE code = $2
		   AND used_by IS NULL`,
		tenantID,
		code,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to claim license code", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeConflictCodeUsed, "license code has already been used", nil)
	}
	return nil
}
