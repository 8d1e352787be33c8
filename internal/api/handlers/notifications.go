package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"hrdocs/internal/compliance"
	"hrdocs/internal/core"
	"hrdocs/internal/entitlements"
	"hrdocs/internal/metrics"
	"hrdocs/internal/types"
)

// EmployeeLister provides the employee snapshot the rule engine evaluates.
type EmployeeLister interface {
	ListByTenant(ctx context.Context, tenantID string) ([]types.Employee, error)
}

// DocumentLister provides the document snapshot the rule engine evaluates.
type DocumentLister interface {
	ListByTenant(ctx context.Context, tenantID string, kind types.DocumentKind) ([]types.Document, error)
}

// NotificationsResponse is the response body for GET /v1/notifications.
// Items arrive in the engine's order: ascending days_left.
type NotificationsResponse struct {
	Items []types.NotificationItem `json:"items"`
	Count int                      `json:"count"`
}

// NotificationsHandler evaluates the compliance rules on demand.
type NotificationsHandler struct {
	tenants    TenantReader
	employees  EmployeeLister
	documents  DocumentLister
	gatekeeper *entitlements.Gatekeeper
	engine     *compliance.Engine
	metrics    metrics.Collector
	logger     *slog.Logger
	now        func() time.Time
}

// NewNotificationsHandler creates a NotificationsHandler with the provided
// dependencies. A nil collector disables batch-size metrics.
func NewNotificationsHandler(
	tenants TenantReader,
	employees EmployeeLister,
	documents DocumentLister,
	gk *entitlements.Gatekeeper,
	engine *compliance.Engine,
	collector metrics.Collector,
	l *slog.Logger,
) *NotificationsHandler {
	if collector == nil {
		collector = metrics.Noop{}
	}
	if l == nil {
		l = slog.Default()
	}
	return &NotificationsHandler{
		tenants:    tenants,
		employees:  employees,
		documents:  documents,
		gatekeeper: gk,
		engine:     engine,
		metrics:    collector,
		logger:     l,
		now:        time.Now,
	}
}

// RegisterRoutes mounts the notifications endpoint on the v1 router.
func (h *NotificationsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.List)
}

// List handles GET /v1/notifications.
//
// Flow:
//  1. Resolve the tenant and derive its gate; tenants whose effective plan
//     lacks the notifications feature get 403. An expired business plan
//     therefore loses the feed until renewal.
//  2. Fetch the employee and document snapshots concurrently.
//  3. Run every compliance rule and return the merged, sorted batch.
//
// Alerts are derived on each read and never persisted, so the response for
// fixed inputs is stable within a calendar day.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
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
	if !gate.CanUseFeature(types.FeatureNotifications) {
		core.Error(w, r, types.NewAppError(
			types.ErrCodePermissionFeature,
			"compliance notifications are not included in the current plan",
			nil,
		))
		return
	}

	var (
		employees []types.Employee
		documents []types.Document
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		employees, err = h.employees.ListByTenant(ctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		documents, err = h.documents.ListByTenant(ctx, tenantID, "")
		return err
	})
	if err := g.Wait(); err != nil {
		core.Error(w, r, err)
		return
	}

	items := h.engine.CheckAll(employees, documents)
	h.metrics.RecordAlertBatch(r.Context(), len(items))

	h.logger.InfoContext(r.Context(), "compliance notifications evaluated",
		slog.String("tenant_id", tenantID),
		slog.Int("employee_count", len(employees)),
		slog.Int("item_count", len(items)),
	)

	if items == nil {
		items = []types.NotificationItem{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: NotificationsResponse{
		Items: items,
		Count: len(items),
	}})
}
