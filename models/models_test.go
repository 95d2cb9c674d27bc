package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS "tenants" (
			"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, "slug" TEXT NOT NULL UNIQUE,
			"logo_url" TEXT, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "merchants" (
			"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, "tenant_id" TEXT, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "wallets" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL UNIQUE, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "points_ledger" (
			"id" TEXT PRIMARY KEY, "wallet_id" TEXT NOT NULL, "delta" INTEGER NOT NULL,
			"event_type" TEXT NOT NULL, "reason" TEXT, "tenant_id" TEXT, "merchant_id" TEXT,
			"created_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

// ==================== BeforeCreate Hook Tests ====================

func TestWalletBeforeCreateGeneratesUUID(t *testing.T) {
	db := setupTestDB(t)
	wallet := Wallet{UserID: uuid.New()}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatal(err)
	}
	if wallet.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestWalletBeforeCreatePreservesUUID(t *testing.T) {
	db := setupTestDB(t)
	existingID := uuid.New()
	wallet := Wallet{ID: existingID, UserID: uuid.New()}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatal(err)
	}
	if wallet.ID != existingID {
		t.Error("UUID should have been preserved")
	}
}

func TestWalletUniquePerUser(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.New()
	if err := db.Create(&Wallet{UserID: userID}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&Wallet{UserID: userID}).Error; err == nil {
		t.Error("expected unique violation for a second wallet")
	}
}

func TestTenantBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	tenant := Tenant{Name: "GolfLife", Slug: "golf"}
	db.Create(&tenant)
	if tenant.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestMerchantBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	merchant := Merchant{Name: "Pro Shop"}
	db.Create(&merchant)
	if merchant.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestLedgerEntryBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	entry := PointsLedgerEntry{WalletID: uuid.New(), Delta: 25, EventType: EventMerchantAward}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatal(err)
	}
	if entry.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}

	var stored PointsLedgerEntry
	if err := db.Table("points_ledger").Where("id = ?", entry.ID).First(&stored).Error; err != nil {
		t.Fatalf("entry not stored in points_ledger: %v", err)
	}
	if stored.Delta != 25 || stored.TenantID != nil {
		t.Errorf("unexpected stored entry: %+v", stored)
	}
}

// ==================== EarnToken Tests ====================

func TestEarnTokenIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"future", now.Add(time.Hour), false},
		{"past", now.Add(-time.Second), true},
		{"exactly now", now, true},
	}

	for _, tc := range tests {
		token := EarnToken{Code: "X", ExpiresAt: tc.expiresAt}
		if got := token.IsExpired(now); got != tc.expected {
			t.Errorf("%s: expected IsExpired=%v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestEarnTokenIsClaimed(t *testing.T) {
	token := EarnToken{Code: "X"}
	if token.IsClaimed() {
		t.Error("new token should not be claimed")
	}
	now := time.Now()
	token.ClaimedAt = &now
	if !token.IsClaimed() {
		t.Error("token with claimed_at should be claimed")
	}
}

func TestTableNames(t *testing.T) {
	if (PointsLedgerEntry{}).TableName() != "points_ledger" {
		t.Error("ledger table name mismatch")
	}
	if (WalletBalanceTotal{}).TableName() != "wallet_balance_total" {
		t.Error("total view name mismatch")
	}
	if (WalletBalanceByTenant{}).TableName() != "wallet_balance_by_tenant" {
		t.Error("breakdown view name mismatch")
	}
}
