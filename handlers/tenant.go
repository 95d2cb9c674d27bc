package handlers

import (
	"net/http"

	"lifestyle-backend/config"
	"lifestyle-backend/middleware"
	"lifestyle-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TenantHandler struct {
	Catalog    *config.TenantCatalog
	Onboarding *services.OnboardingService
	Logger     *zap.Logger
}

// GetTenant returns the branding of the tenant the request host resolved to.
func (h *TenantHandler) GetTenant(c *gin.Context) {
	meta := h.Catalog.Meta(middleware.TenantSlug(c))

	logoURL := ""
	if tenant, err := h.Onboarding.TenantBySlug(c.Request.Context(), meta.Slug); err == nil {
		logoURL = tenant.LogoURL
	} else if services.KindOf(err) != services.KindNotFound {
		// branding still renders without a logo
		h.Logger.Warn("tenant logo lookup failed", zap.String("tenant", meta.Slug), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":        meta.Slug,
		"name":        meta.Name,
		"title":       meta.Title,
		"description": meta.Description,
		"theme":       meta.Theme,
		"logo_url":    logoURL,
	})
}
