package license

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hrdocs/internal/entitlements"
	"hrdocs/internal/metrics"
	"hrdocs/internal/types"
)

// CodeStore is the storage contract for license codes. Claim must be a
// conditional write: it fails with ErrCodeConflictCodeUsed when the code is
// already claimed, and that guarantee must hold across concurrent processes.
type CodeStore interface {
	GetByCode(ctx context.Context, code string) (*types.LicenseCode, error)
	Claim(ctx context.Context, code, tenantID string) error
}

// TenantStore is the storage contract for tenant plan updates.
type TenantStore interface {
	UpdatePlan(ctx context.Context, id string, plan types.PlanTier, startedAt, expiresAt time.Time, maxEmployees int) error
}

// Service redeems license codes against tenant plans.
type Service struct {
	codes   CodeStore
	tenants TenantStore
	catalog entitlements.Catalog
	metrics metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a redemption service. A nil collector disables metrics.
func NewService(codes CodeStore, tenants TenantStore, catalog entitlements.Catalog, collector metrics.Collector, logger *slog.Logger) *Service {
	if collector == nil {
		collector = metrics.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		codes:   codes,
		tenants: tenants,
		catalog: catalog,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// Redeem validates and atomically claims a license code for the tenant, then
// applies the code's plan to the tenant.
//
// The claim write and the plan write are strictly sequenced and deliberately
// not atomic with each other. If the plan write fails after a successful
// claim, the code stays consumed and the caller gets
// ErrCodeInternalPlanUpdateFailed: an operator resolves it manually rather
// than the service retrying and risking a double claim.
//
// Redeeming a code while a plan window is still running overwrites the
// window; durations do not stack.
func (s *Service) Redeem(ctx context.Context, rawCode, tenantID string) (*types.RedemptionResult, error) {
	result, err := s.redeem(ctx, rawCode, tenantID)
	if err != nil {
		s.metrics.RecordRedemption(ctx, metrics.ResultFailure)
		return nil, err
	}
	s.metrics.RecordRedemption(ctx, metrics.ResultSuccess)
	return result, nil
}

func (s *Service) redeem(ctx context.Context, rawCode, tenantID string) (*types.RedemptionResult, error) {
	code := Normalize(rawCode)
	if err := ValidateFormat(code); err != nil {
		return nil, err
	}

	lc, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if lc.IsClaimed() {
		return nil, types.NewAppError(types.ErrCodeConflictCodeUsed, "license code has already been used", nil)
	}

	now := s.now()
	if lc.ExpiresAt != nil && lc.ExpiresAt.Before(now) {
		return nil, types.NewAppError(types.ErrCodeExpiredLicenseCode, "license code claim window has expired", nil)
	}

	// The conditional write is the authority on the claim; the IsClaimed
	// check above only short-circuits the obvious case.
	if err := s.codes.Claim(ctx, code, tenantID); err != nil {
		return nil, err
	}

	planExpiresAt := now.AddDate(0, 0, lc.DurationDays)
	limits := s.catalog.LimitsFor(lc.Plan)

	if err := s.tenants.UpdatePlan(ctx, tenantID, lc.Plan, now, planExpiresAt, limits.MaxEmployees); err != nil {
		// The code is consumed at this point. Surface a distinct error so the
		// condition is operator-visible instead of looking like a retryable
		// redemption failure.
		s.logger.Error("plan update failed after code claim",
			slog.String("code", code),
			slog.String("tenant_id", tenantID),
			slog.String("plan", string(lc.Plan)),
			slog.String("error", err.Error()),
		)
		return nil, types.NewAppErrorWithDetails(types.ErrCodeInternalPlanUpdateFailed,
			"license code was claimed but the plan update failed", err,
			map[string]any{"code": code})
	}

	s.logger.Info("license code redeemed",
		slog.String("code", code),
		slog.String("tenant_id", tenantID),
		slog.String("plan", string(lc.Plan)),
		slog.Int("duration_days", lc.DurationDays),
	)

	return &types.RedemptionResult{
		Plan:         lc.Plan,
		DurationDays: lc.DurationDays,
	}, nil
}

// IsClaimConflict reports whether the error is the loser side of a claim
// race or a reuse of a consumed code.
func IsClaimConflict(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code == types.ErrCodeConflictCodeUsed
}
