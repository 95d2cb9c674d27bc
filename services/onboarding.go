package services

import (
	"context"
	"errors"
	"time"

	"lifestyle-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is a user's onboarding state.
type Profile struct {
	UserID        uuid.UUID       `json:"userId"`
	PrimaryTenant *models.Tenant  `json:"primaryTenant"`
	Memberships   []models.Tenant `json:"memberships"`
}

// Onboarded reports whether the user has picked a home tenant.
func (p *Profile) Onboarded() bool {
	return p.PrimaryTenant != nil
}

type OnboardingService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOnboardingService(db *gorm.DB, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{db: db, logger: logger}
}

func (s *OnboardingService) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	tenants := []models.Tenant{}
	if err := s.db.WithContext(ctx).Order("slug ASC").Find(&tenants).Error; err != nil {
		return nil, newError(KindDownstream, "Could not load tenants.", err)
	}
	return tenants, nil
}

func (s *OnboardingService) TenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Unknown tenant.", nil)
		}
		return nil, newError(KindDownstream, "Could not load tenant.", err)
	}
	return &tenant, nil
}

// GetProfile returns the user's profile. Users who never onboarded get an
// empty profile rather than an error.
func (s *OnboardingService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	db := s.db.WithContext(ctx)
	profile := &Profile{UserID: userID, Memberships: []models.Tenant{}}

	var stored models.UserProfile
	err := db.Where("user_id = ?", userID).First(&stored).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, newError(KindDownstream, "Could not load profile.", err)
	case stored.PrimaryTenantID != nil:
		var tenant models.Tenant
		if err := db.Where("id = ?", *stored.PrimaryTenantID).First(&tenant).Error; err == nil {
			profile.PrimaryTenant = &tenant
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindDownstream, "Could not load profile.", err)
		}
	}

	if err := db.Table("tenants").
		Joins("JOIN user_tenants ut ON ut.tenant_id = tenants.id").
		Where("ut.user_id = ?", userID).
		Order("tenants.slug ASC").
		Select("tenants.*").
		Scan(&profile.Memberships).Error; err != nil {
		return nil, newError(KindDownstream, "Could not load profile.", err)
	}

	return profile, nil
}

// ChoosePrimaryTenant makes tenantID the user's home tenant, joins them to it
// and makes sure they have a wallet.
func (s *OnboardingService) ChoosePrimaryTenant(ctx context.Context, userID, tenantID uuid.UUID) (*models.Tenant, error) {
	if userID == uuid.Nil {
		return nil, newError(KindValidation, "Missing user", nil)
	}
	if tenantID == uuid.Nil {
		return nil, newError(KindValidation, "tenant_id is required", nil)
	}

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Unknown tenant.", nil)
		}
		return nil, newError(KindDownstream, "Could not load tenant.", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		profile := models.UserProfile{UserID: userID, PrimaryTenantID: &tenant.ID, CreatedAt: now, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"primary_tenant_id", "updated_at"}),
		}).Create(&profile).Error; err != nil {
			return err
		}

		membership := models.UserTenant{UserID: userID, TenantID: tenant.ID, CreatedAt: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
			return err
		}

		_, err := ensureWallet(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, newError(KindDownstream, "Could not save onboarding.", err)
	}

	s.logger.Info("primary tenant chosen", zap.String("user_id", userID.String()), zap.String("tenant", tenant.Slug))
	return &tenant, nil
}

// EnsureWallet returns the user's wallet, creating it if needed.
func (s *OnboardingService) EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := ensureWallet(ctx, s.db, userID)
	if err != nil {
		return nil, newError(KindDownstream, "Failed to create wallet.", err)
	}
	return wallet, nil
}
