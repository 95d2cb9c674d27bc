package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"lifestyle-backend/firebase"
	"lifestyle-backend/models"
	"lifestyle-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultTokenTTL     = 30 * 24 * time.Hour
	generatedCodeLength = 10
)

// MintRequest describes a new earn token. Code is generated when empty, and
// ExpiresAt wins over TTL when both are given.
type MintRequest struct {
	Code       string
	Points     int
	ExpiresAt  *time.Time
	TTL        time.Duration
	MerchantID *uuid.UUID
}

// AdminService covers the operator-only operations: merchants, earn tokens
// and tenant branding.
type AdminService struct {
	db      *gorm.DB
	storage firebase.StorageClient
	logger  *zap.Logger
	now     func() time.Time
}

func NewAdminService(db *gorm.DB, storage firebase.StorageClient, logger *zap.Logger) *AdminService {
	return &AdminService{
		db:      db,
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StorageEnabled reports whether logo uploads can be served.
func (s *AdminService) StorageEnabled() bool {
	return s.storage != nil
}

func (s *AdminService) CreateMerchant(ctx context.Context, name, tenantSlug string) (*models.Merchant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindValidation, "name is required", nil)
	}

	merchant := models.Merchant{Name: name}
	if tenantSlug != "" {
		var tenant models.Tenant
		if err := s.db.WithContext(ctx).Where("slug = ?", tenantSlug).First(&tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(KindNotFound, "Unknown tenant.", nil)
			}
			return nil, newError(KindDownstream, "Could not load tenant.", err)
		}
		merchant.TenantID = &tenant.ID
	}

	if err := s.db.WithContext(ctx).Create(&merchant).Error; err != nil {
		return nil, newError(KindDownstream, "Could not create merchant.", err)
	}

	s.logger.Info("merchant created", zap.String("merchant_id", merchant.ID.String()), zap.String("tenant", tenantSlug))
	return &merchant, nil
}

func (s *AdminService) MintEarnToken(ctx context.Context, req MintRequest) (*models.EarnToken, error) {
	if req.Points < 1 {
		return nil, newError(KindValidation, "points must be at least 1", nil)
	}

	now := s.now()
	expiresAt := now.Add(DefaultTokenTTL)
	switch {
	case req.ExpiresAt != nil:
		expiresAt = req.ExpiresAt.UTC()
	case req.TTL > 0:
		expiresAt = now.Add(req.TTL)
	}
	if !expiresAt.After(now) {
		return nil, newError(KindValidation, "expires_at must be in the future", nil)
	}

	code := utils.NormalizeClaimCode(req.Code)
	if code == "" {
		generated, err := utils.GenerateClaimCode(generatedCodeLength)
		if err != nil {
			return nil, newError(KindDownstream, "Could not generate code.", err)
		}
		code = generated
	}

	db := s.db.WithContext(ctx)
	if req.MerchantID != nil {
		var merchant models.Merchant
		if err := db.Where("id = ?", *req.MerchantID).First(&merchant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(KindNotFound, "Unknown merchant.", nil)
			}
			return nil, newError(KindDownstream, "Could not load merchant.", err)
		}
	}

	var existing int64
	if err := db.Model(&models.EarnToken{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, newError(KindDownstream, "Could not create earn token.", err)
	}
	if existing > 0 {
		return nil, newError(KindConflict, "Code already exists.", nil)
	}

	token := models.EarnToken{
		Code:       code,
		Points:     req.Points,
		ExpiresAt:  expiresAt,
		MerchantID: req.MerchantID,
		CreatedAt:  now,
	}
	if err := db.Create(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindConflict, "Code already exists.", nil)
		}
		return nil, newError(KindDownstream, "Could not create earn token.", err)
	}

	s.logger.Info("earn token minted", zap.String("code", token.Code), zap.Int("points", token.Points), zap.Time("expires_at", token.ExpiresAt))
	return &token, nil
}

// SetTenantLogo uploads r as the logo of the tenant with slug and replaces
// the previous logo object.
func (s *AdminService) SetTenantLogo(ctx context.Context, slug string, r io.Reader, filename, contentType string) (*models.Tenant, error) {
	return s.replaceLogo(ctx, slug, func(tenant *models.Tenant) (string, error) {
		return s.storage.UploadTenantLogo(ctx, r, tenant.Slug, filename, contentType)
	})
}

// ImportTenantLogo fetches the logo from a public URL.
func (s *AdminService) ImportTenantLogo(ctx context.Context, slug, imageURL string) (*models.Tenant, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, newError(KindValidation, "url is required", nil)
	}
	return s.replaceLogo(ctx, slug, func(tenant *models.Tenant) (string, error) {
		return s.storage.ImportTenantLogo(ctx, imageURL, tenant.Slug)
	})
}

func (s *AdminService) replaceLogo(ctx context.Context, slug string, store func(*models.Tenant) (string, error)) (*models.Tenant, error) {
	if s.storage == nil {
		return nil, newError(KindDownstream, "Logo storage is not configured.", nil)
	}

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Unknown tenant.", nil)
		}
		return nil, newError(KindDownstream, "Could not load tenant.", err)
	}

	url, err := store(&tenant)
	if err != nil {
		return nil, newError(KindDownstream, "Could not store logo.", err)
	}

	previous := tenant.LogoURL
	if err := s.db.WithContext(ctx).Model(&tenant).Update("logo_url", url).Error; err != nil {
		return nil, newError(KindDownstream, "Could not save logo.", err)
	}
	tenant.LogoURL = url

	if previous != "" && previous != url {
		if objectPath, err := utils.TenantLogoObjectPath(previous, tenant.Slug); err == nil {
			if err := s.storage.DeleteFile(ctx, objectPath); err != nil {
				s.logger.Warn("failed to delete previous logo", zap.String("object", objectPath), zap.Error(err))
			}
		}
	}

	return &tenant, nil
}
