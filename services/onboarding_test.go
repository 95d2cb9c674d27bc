package services

import (
	"context"
	"testing"

	"lifestyle-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTenantsOrderedBySlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db, nopLogger())
	seedTenant(t, db, "rv", "RvLife")
	seedTenant(t, db, "beach", "BeachLife")
	seedTenant(t, db, "golf", "GolfLife")

	tenants, err := svc.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 3)
	assert.Equal(t, "beach", tenants[0].Slug)
	assert.Equal(t, "golf", tenants[1].Slug)
	assert.Equal(t, "rv", tenants[2].Slug)
}

func TestGetProfileForNewUser(t *testing.T) {
	svc := NewOnboardingService(newTestDB(t), nopLogger())
	userID := uuid.New()

	profile, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)
	assert.False(t, profile.Onboarded())
	assert.Empty(t, profile.Memberships)
}

func TestChoosePrimaryTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db, nopLogger())
	golf := seedTenant(t, db, "golf", "GolfLife")
	beach := seedTenant(t, db, "beach", "BeachLife")
	userID := uuid.New()

	tenant, err := svc.ChoosePrimaryTenant(context.Background(), userID, golf.ID)
	require.NoError(t, err)
	assert.Equal(t, "golf", tenant.Slug)

	profile, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, profile.Onboarded())
	assert.Equal(t, golf.ID, profile.PrimaryTenant.ID)
	require.Len(t, profile.Memberships, 1)

	var wallets int64
	db.Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&wallets)
	assert.Equal(t, int64(1), wallets)

	// switching keeps both memberships and the same wallet
	_, err = svc.ChoosePrimaryTenant(context.Background(), userID, beach.ID)
	require.NoError(t, err)
	_, err = svc.ChoosePrimaryTenant(context.Background(), userID, beach.ID)
	require.NoError(t, err)

	profile, err = svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, beach.ID, profile.PrimaryTenant.ID)
	require.Len(t, profile.Memberships, 2)
	assert.Equal(t, "beach", profile.Memberships[0].Slug)

	db.Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&wallets)
	assert.Equal(t, int64(1), wallets)
}

func TestChoosePrimaryTenantErrors(t *testing.T) {
	svc := NewOnboardingService(newTestDB(t), nopLogger())

	_, err := svc.ChoosePrimaryTenant(context.Background(), uuid.New(), uuid.Nil)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.ChoosePrimaryTenant(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestEnsureWalletIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db, nopLogger())
	userID := uuid.New()

	first, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestTenantBySlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(db, nopLogger())
	seedTenant(t, db, "golf", "GolfLife")

	tenant, err := svc.TenantBySlug(context.Background(), "golf")
	require.NoError(t, err)
	assert.Equal(t, "GolfLife", tenant.Name)

	_, err = svc.TenantBySlug(context.Background(), "nope")
	assert.Equal(t, KindNotFound, KindOf(err))
}
