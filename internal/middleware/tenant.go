package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dranzd/storebunk-accounting/internal/platform/requestctx"
	"github.com/gin-gonic/gin"
)

// TenantHeader selects the tenant a request acts for.
const TenantHeader = "X-Tenant-ID"

const maxTenantIDLength = 64

// TenantMiddleware puts the request's tenant into the request context. Requests
// without the header act for defaultTenant.
func TenantMiddleware(defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(TenantHeader))
		if tenantID == "" {
			tenantID = defaultTenant
		}
		if len(tenantID) > maxTenantIDLength || strings.ContainsAny(tenantID, " \t\r\n") {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + TenantHeader + " header"})
			return
		}

		ctx := requestctx.WithTenantID(c.Request.Context(), tenantID)
		ctx = requestctx.WithLogger(ctx, GetLoggerFromCtx(ctx).With(slog.String("tenant_id", tenantID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
