package handlers

import (
	"net/http"
	"time"

	"lifestyle-backend/services"
	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Admin  *services.AdminService
	Logger *zap.Logger
}

func (h *AdminHandler) CreateMerchant(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required,max=200"`
		TenantSlug string `json:"tenant_slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	merchant, err := h.Admin.CreateMerchant(c.Request.Context(), req.Name, req.TenantSlug)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusCreated, merchant)
}

// MintEarnToken creates a claimable code, typically printed as a QR code.
func (h *AdminHandler) MintEarnToken(c *gin.Context) {
	var req struct {
		Code       string     `json:"code" binding:"max=64"`
		Points     int        `json:"points" binding:"required,min=1"`
		ExpiresAt  *time.Time `json:"expires_at"`
		TTLHours   int        `json:"ttl_hours" binding:"min=0"`
		MerchantID string     `json:"merchant_id" binding:"omitempty,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	mint := services.MintRequest{
		Code:      req.Code,
		Points:    req.Points,
		ExpiresAt: req.ExpiresAt,
		TTL:       time.Duration(req.TTLHours) * time.Hour,
	}
	if req.MerchantID != "" {
		merchantID := uuid.MustParse(req.MerchantID)
		mint.MerchantID = &merchantID
	}

	token, err := h.Admin.MintEarnToken(c.Request.Context(), mint)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// UploadTenantLogo replaces a tenant's logo with the uploaded image.
func (h *AdminHandler) UploadTenantLogo(c *gin.Context) {
	if !h.Admin.StorageEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Logo storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "code": string(services.KindValidation)})
		return
	}
	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": string(services.KindValidation)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload", "code": string(services.KindValidation)})
		return
	}
	defer file.Close()

	tenant, err := h.Admin.SetTenantLogo(c.Request.Context(), c.Param("slug"), file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": tenant.Slug, "logo_url": tenant.LogoURL})
}

// ImportTenantLogo sets a tenant's logo from a public image URL.
func (h *AdminHandler) ImportTenantLogo(c *gin.Context) {
	if !h.Admin.StorageEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Logo storage is not configured"})
		return
	}

	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.Admin.ImportTenantLogo(c.Request.Context(), c.Param("slug"), req.URL)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": tenant.Slug, "logo_url": tenant.LogoURL})
}
