package middleware

import (
	"lifestyle-backend/config"
	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
)

const ContextTenantSlug = "tenant_slug"

// TenantMiddleware resolves the tenant from the request host and exposes it
// to handlers and, through the X-Tenant header, to clients.
func TenantMiddleware(catalog *config.TenantCatalog) gin.HandlerFunc {
	allowed := catalog.Allowed()
	return func(c *gin.Context) {
		slug := utils.ResolveTenantSlug(c.Request.Host, allowed, catalog.Default)
		c.Set(ContextTenantSlug, slug)
		c.Header("X-Tenant", slug)
		c.Next()
	}
}

// TenantSlug returns the slug resolved for this request.
func TenantSlug(c *gin.Context) string {
	return c.GetString(ContextTenantSlug)
}
