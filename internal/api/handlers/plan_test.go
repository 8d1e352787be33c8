package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrdocs/internal/entitlements"
	"hrdocs/internal/types"
)

// planTestNow is the fixed clock for gate derivation in these tests.
var planTestNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newPlanHandler(tenants TenantReader, employees EmployeeCounter) *PlanHandler {
	h := NewPlanHandler(tenants, employees, entitlements.NewGatekeeper(entitlements.NewStaticCatalog()), testLogger())
	h.now = func() time.Time { return planTestNow }
	return h
}

func TestGetPlan_ActiveBusinessPlan(t *testing.T) {
	expires := planTestNow.AddDate(0, 0, 90)
	tenants := &mockTenantReader{getByIDFn: func(ctx context.Context, id string) (*types.Tenant, error) {
		return &types.Tenant{ID: id, Plan: types.PlanBusiness, PlanExpiresAt: &expires}, nil
	}}
	employees := &mockEmployeeRepo{countFn: func(ctx context.Context, tenantID string) (int, error) {
		return 42, nil
	}}
	h := newPlanHandler(tenants, employees)

	req := tenantRequest(http.MethodGet, "/v1/plan", "ten_1", nil)
	rec := httptest.NewRecorder()

	h.GetPlan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data PlanResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	data := resp.Data

	if data.Plan != types.PlanBusiness || data.EffectivePlan != types.PlanBusiness {
		t.Errorf("plan = %s, effective = %s", data.Plan, data.EffectivePlan)
	}
	if data.Status != types.PlanStatusActive {
		t.Errorf("status = %s", data.Status)
	}
	if data.DaysRemaining == nil || *data.DaysRemaining != 90 {
		t.Errorf("days_remaining = %v", data.DaysRemaining)
	}
	if data.Limits.MaxEmployees != 200 {
		t.Errorf("max_employees = %d", data.Limits.MaxEmployees)
	}
	if data.EmployeeCount != 42 || !data.CanAddEmployee {
		t.Errorf("employee_count = %d, can_add = %v", data.EmployeeCount, data.CanAddEmployee)
	}
}

func TestGetPlan_ExpiredPlanBehavesAsFree(t *testing.T) {
	expires := planTestNow.AddDate(0, 0, -3)
	tenants := &mockTenantReader{getByIDFn: func(ctx context.Context, id string) (*types.Tenant, error) {
		return &types.Tenant{ID: id, Plan: types.PlanBusiness, PlanExpiresAt: &expires}, nil
	}}
	employees := &mockEmployeeRepo{countFn: func(ctx context.Context, tenantID string) (int, error) {
		return 10, nil
	}}
	h := newPlanHandler(tenants, employees)

	req := tenantRequest(http.MethodGet, "/v1/plan", "ten_1", nil)
	rec := httptest.NewRecorder()

	h.GetPlan(rec, req)

	var resp struct {
		Data PlanResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	data := resp.Data

	// The stored plan is reported as purchased, but everything enforced
	// (effective plan, limits, predicates) is the free tier.
	if data.Plan != types.PlanBusiness {
		t.Errorf("stored plan = %s", data.Plan)
	}
	if data.EffectivePlan != types.PlanFree {
		t.Errorf("effective plan = %s", data.EffectivePlan)
	}
	if data.Status != types.PlanStatusExpired || !data.IsExpired {
		t.Errorf("status = %s, is_expired = %v", data.Status, data.IsExpired)
	}
	if data.Limits.MaxEmployees != 5 {
		t.Errorf("limits fell back to %d, want free tier 5", data.Limits.MaxEmployees)
	}
	// 10 employees already exceed the free cap of 5.
	if data.CanAddEmployee {
		t.Error("can_add_employee should be false over the free cap")
	}
}

func TestGetPlan_ExpiringSoon(t *testing.T) {
	expires := planTestNow.AddDate(0, 0, 5)
	tenants := &mockTenantReader{getByIDFn: func(ctx context.Context, id string) (*types.Tenant, error) {
		return &types.Tenant{ID: id, Plan: types.PlanStarter, PlanExpiresAt: &expires}, nil
	}}
	h := newPlanHandler(tenants, &mockEmployeeRepo{})

	req := tenantRequest(http.MethodGet, "/v1/plan", "ten_1", nil)
	rec := httptest.NewRecorder()

	h.GetPlan(rec, req)

	var resp struct {
		Data PlanResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data.Status != types.PlanStatusExpiringSoon || !resp.Data.IsExpiringSoon {
		t.Errorf("status = %s, is_expiring_soon = %v", resp.Data.Status, resp.Data.IsExpiringSoon)
	}
}

func TestGetPlan_TenantNotFound(t *testing.T) {
	tenants := &mockTenantReader{getByIDFn: func(ctx context.Context, id string) (*types.Tenant, error) {
		return nil, types.NewAppError(types.ErrCodeNotFoundTenant, "tenant not found", nil)
	}}
	h := newPlanHandler(tenants, &mockEmployeeRepo{})

	req := tenantRequest(http.MethodGet, "/v1/plan", "ten_missing", nil)
	rec := httptest.NewRecorder()

	h.GetPlan(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetPlan_MissingTenantContext(t *testing.T) {
	h := newPlanHandler(&mockTenantReader{}, &mockEmployeeRepo{})

	req := tenantRequest(http.MethodGet, "/v1/plan", "", nil)
	rec := httptest.NewRecorder()

	h.GetPlan(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
