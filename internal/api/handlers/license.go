// Package handlers contains the HTTP handler implementations for the hrdocs API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdocs/internal/core"
	"hrdocs/internal/types"
)

// LicenseRedeemer is the redemption contract the handler depends on. Defined
// locally so tests can inject mocks without touching the concrete service.
type LicenseRedeemer interface {
	Redeem(ctx context.Context, rawCode, tenantID string) (*types.RedemptionResult, error)
}

// RedeemRequest is the request body for POST /v1/license/redeem.
type RedeemRequest struct {
	Code string `json:"code" validate:"required,license_code"`
}

// RedeemResponse is the response body for a successful redemption.
type RedeemResponse struct {
	Plan         types.PlanTier `json:"plan"`
	DurationDays int            `json:"duration_days"`
}

// LicenseHandler handles license code redemption.
type LicenseHandler struct {
	service   LicenseRedeemer
	validator *core.Validator
	logger    *slog.Logger
}

// NewLicenseHandler creates a LicenseHandler with the provided dependencies.
func NewLicenseHandler(svc LicenseRedeemer, v *core.Validator, l *slog.Logger) *LicenseHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LicenseHandler{
		service:   svc,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the license endpoints on the v1 router.
func (h *LicenseHandler) RegisterRoutes(r chi.Router) {
	r.Post("/license/redeem", h.Redeem)
}

// Redeem handles POST /v1/license/redeem.
//
// Flow:
//  1. Decode and validate the RedeemRequest.
//  2. Resolve the tenant identity from the request context.
//  3. Call the redemption service; normalization, the atomic claim, and the
//     plan update all happen there.
//  4. Return 200 with the applied plan and duration, or the mapped error.
func (h *LicenseHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	tenantID, ok := types.GetTenantID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodePermissionTenantMismatch,
			"tenant context is required",
			nil,
		))
		return
	}

	result, err := h.service.Redeem(r.Context(), req.Code, tenantID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "license redeemed via API",
		slog.String("tenant_id", tenantID),
		slog.String("plan", string(result.Plan)),
	)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: RedeemResponse{
		Plan:         result.Plan,
		DurationDays: result.DurationDays,
	}})
}
