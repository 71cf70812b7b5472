// Package requestctx carries request-scoped values through context.Context.
package requestctx

import (
	"context"
	"strings"
)

// DefaultTenant is used when a request names no tenant.
const DefaultTenant = "default"

type tenantIDContextKey struct{}

// WithTenantID stores a tenant identifier in context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantIDContextKey{}, strings.TrimSpace(tenantID))
}

// TenantIDFromContext returns the tenant identifier stored in context, or "".
func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(tenantIDContextKey{}).(string)
	return value
}

// TenantIDOrDefault returns the tenant in context, falling back to fallback.
func TenantIDOrDefault(ctx context.Context, fallback string) string {
	if tenant := TenantIDFromContext(ctx); tenant != "" {
		return tenant
	}
	return fallback
}
