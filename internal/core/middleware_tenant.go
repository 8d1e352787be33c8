package core

import (
	"net/http"
	"strings"

	"hrdocs/internal/types"
)

// tenantHeader carries the authenticated tenant identity. The upstream gateway
// terminates authentication and forwards the resolved tenant ID in this header.
const tenantHeader = "X-Tenant-Id"

// TenantContextMiddleware extracts the tenant identity from the X-Tenant-Id
// header and injects it into the request context. Every /v1 route requires a
// tenant identity; requests without one are rejected with 400 before reaching
// any handler.
func (s *Server) TenantContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get(tenantHeader))
		if tenantID == "" {
			Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationMissingField,
				"tenant identity header is required",
				nil,
				map[string]any{"header": tenantHeader},
			))
			return
		}

		ctx := types.WithTenantID(r.Context(), tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
