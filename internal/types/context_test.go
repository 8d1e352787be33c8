package types

import (
	"context"
	"testing"
)

func TestTenantIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if id, ok := GetTenantID(ctx); ok || id != "" {
		t.Errorf("empty context returned tenant %q, ok=%v", id, ok)
	}

	ctx = WithTenantID(ctx, "ten_42")
	id, ok := GetTenantID(ctx)
	if !ok || id != "ten_42" {
		t.Errorf("GetTenantID = %q, %v", id, ok)
	}
}

func TestTenantID_EmptyValueIsNotPresent(t *testing.T) {
	ctx := WithTenantID(context.Background(), "")
	if _, ok := GetTenantID(ctx); ok {
		t.Error("empty tenant ID must not count as present")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("empty context returned request ID %q", got)
	}

	ctx = WithRequestID(ctx, "req_abc123")
	if got := GetRequestID(ctx); got != "req_abc123" {
		t.Errorf("GetRequestID = %q", got)
	}
}
