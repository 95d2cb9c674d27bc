package services

import (
	"testing"
	"time"

	"lifestyle-backend/database"
	"lifestyle-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB returns an isolated in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.CreateSQLiteSchema(db))
	return db
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func seedTenant(t *testing.T, db *gorm.DB, slug, name string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Slug: slug, Name: name}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func seedMerchant(t *testing.T, db *gorm.DB, name string, tenantID *uuid.UUID) models.Merchant {
	t.Helper()
	merchant := models.Merchant{Name: name, TenantID: tenantID}
	require.NoError(t, db.Create(&merchant).Error)
	return merchant
}

func seedToken(t *testing.T, db *gorm.DB, code string, points int, expiresAt time.Time, merchantID *uuid.UUID) models.EarnToken {
	t.Helper()
	token := models.EarnToken{Code: code, Points: points, ExpiresAt: expiresAt, MerchantID: merchantID, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&token).Error)
	return token
}

func ledgerFor(t *testing.T, db *gorm.DB, walletID uuid.UUID) []models.PointsLedgerEntry {
	t.Helper()
	var entries []models.PointsLedgerEntry
	require.NoError(t, db.Where("wallet_id = ?", walletID).Order("created_at ASC").Find(&entries).Error)
	return entries
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
