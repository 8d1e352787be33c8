package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdocs/internal/core"
	"hrdocs/internal/entitlements"
	"hrdocs/internal/types"
)

// TenantReader provides the minimal tenant read access the handlers need.
type TenantReader interface {
	GetByID(ctx context.Context, id string) (*types.Tenant, error)
}

// EmployeeCounter reports the current employee headcount for a tenant.
type EmployeeCounter interface {
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// PlanLimitsView is the catalog slice of the gate snapshot.
type PlanLimitsView struct {
	MaxEmployees      int                  `json:"max_employees"`
	Features          []types.Feature      `json:"features"`
	FreeDocumentKinds []types.DocumentKind `json:"free_document_kinds"`
}

// PlanResponse is the response body for GET /v1/plan: the derived entitlement
// state plus the headcount predicate the dashboard renders.
type PlanResponse struct {
	Plan           types.PlanTier   `json:"plan"`
	EffectivePlan  types.PlanTier   `json:"effective_plan"`
	Status         types.PlanStatus `json:"status"`
	DaysRemaining  *int             `json:"days_remaining,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	IsExpired      bool             `json:"is_expired"`
	IsExpiringSoon bool             `json:"is_expiring_soon"`
	Limits         PlanLimitsView   `json:"limits"`
	EmployeeCount  int              `json:"employee_count"`
	CanAddEmployee bool             `json:"can_add_employee"`
}

// PlanHandler serves the derived plan gate snapshot.
type PlanHandler struct {
	tenants    TenantReader
	employees  EmployeeCounter
	gatekeeper *entitlements.Gatekeeper
	logger     *slog.Logger
	now        func() time.Time
}

// NewPlanHandler creates a PlanHandler with the provided dependencies.
func NewPlanHandler(tenants TenantReader, employees EmployeeCounter, gk *entitlements.Gatekeeper, l *slog.Logger) *PlanHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PlanHandler{
		tenants:    tenants,
		employees:  employees,
		gatekeeper: gk,
		logger:     l,
		now:        time.Now,
	}
}

// RegisterRoutes mounts the plan endpoint on the v1 router.
func (h *PlanHandler) RegisterRoutes(r chi.Router) {
	r.Get("/plan", h.GetPlan)
}

// GetPlan handles GET /v1/plan. The snapshot is derived on every read; an
// expired paid plan reports effective_plan "free" while the stored plan field
// stays untouched.
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := types.GetTenantID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodePermissionTenantMismatch,
			"tenant context is required",
			nil,
		))
		return
	}

	tenant, err := h.tenants.GetByID(r.Context(), tenantID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	gate := h.gatekeeper.Derive(tenant.Plan, tenant.PlanExpiresAt, h.now())

	count, err := h.employees.CountByTenant(r.Context(), tenantID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	limits := gate.Limits()
	resp := PlanResponse{
		Plan:           gate.StoredPlan,
		EffectivePlan:  gate.EffectivePlan,
		Status:         gate.Status,
		DaysRemaining:  gate.DaysRemaining,
		ExpiresAt:      tenant.PlanExpiresAt,
		IsExpired:      gate.IsExpired,
		IsExpiringSoon: gate.IsExpiringSoon,
		Limits: PlanLimitsView{
			MaxEmployees:      limits.MaxEmployees,
			Features:          limits.Features,
			FreeDocumentKinds: limits.FreeDocumentKinds,
		},
		EmployeeCount:  count,
		CanAddEmployee: gate.CanAddEmployee(count),
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}
