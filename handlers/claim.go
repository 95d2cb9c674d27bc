package handlers

import (
	"errors"
	"io"
	"net/http"

	"lifestyle-backend/config"
	"lifestyle-backend/metrics"
	"lifestyle-backend/middleware"
	"lifestyle-backend/services"
	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClaimHandler struct {
	Claims  *services.ClaimService
	Catalog *config.TenantCatalog
	Mailer  *utils.Mailer
	Logger  *zap.Logger
}

// Claim redeems an earn token for the signed-in user.
func (h *ClaimHandler) Claim(c *gin.Context) {
	userID, email, ok := middleware.SessionUser(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	// an empty body is a missing code, not a malformed request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	tenant := middleware.TenantSlug(c)
	result, err := h.Claims.Claim(c.Request.Context(), userID, req.Code)
	if err != nil {
		metrics.ObserveClaim(tenant, string(services.KindOf(err)), 0)
		respondError(c, h.Logger, err)
		return
	}
	metrics.ObserveClaim(tenant, "ok", result.Points)

	h.Mailer.SendClaimReceipt(utils.ClaimReceipt{
		Email:        email,
		TenantName:   h.Catalog.Meta(tenant).Name,
		Points:       result.Points,
		MerchantName: result.MerchantName,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"points":       result.Points,
		"merchantName": result.MerchantName,
	})
}
