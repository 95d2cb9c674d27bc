package handlers

import (
	"net/http"

	"lifestyle-backend/config"
	"lifestyle-backend/middleware"
	"lifestyle-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OnboardingHandler struct {
	Onboarding *services.OnboardingService
	Config     *config.Config
	Logger     *zap.Logger
}

func (h *OnboardingHandler) ListTenants(c *gin.Context) {
	tenants, err := h.Onboarding.ListTenants(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *OnboardingHandler) GetProfile(c *gin.Context) {
	userID, email, ok := middleware.SessionUser(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	profile, err := h.Onboarding.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":        profile.UserID,
		"email":         email,
		"onboarded":     profile.Onboarded(),
		"primaryTenant": profile.PrimaryTenant,
		"memberships":   profile.Memberships,
	})
}

// ChoosePrimaryTenant completes onboarding and tells the client where the
// user's home wallet lives.
func (h *OnboardingHandler) ChoosePrimaryTenant(c *gin.Context) {
	userID, _, ok := middleware.SessionUser(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req struct {
		TenantID string `json:"tenant_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.Onboarding.ChoosePrimaryTenant(c.Request.Context(), userID, uuid.MustParse(req.TenantID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"tenant":   tenant,
		"redirect": h.Config.TenantURL(tenant.Slug, "/wallet"),
	})
}
