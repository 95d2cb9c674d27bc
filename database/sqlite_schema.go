package database

import (
	"fmt"

	"gorm.io/gorm"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS "tenants" (
		"id" TEXT PRIMARY KEY,
		"name" TEXT NOT NULL,
		"slug" TEXT NOT NULL UNIQUE,
		"logo_url" TEXT,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "merchants" (
		"id" TEXT PRIMARY KEY,
		"name" TEXT NOT NULL,
		"tenant_id" TEXT,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "earn_tokens" (
		"code" TEXT PRIMARY KEY,
		"points" INTEGER NOT NULL,
		"expires_at" DATETIME NOT NULL,
		"claimed_at" DATETIME,
		"claimed_by_user_id" TEXT,
		"merchant_id" TEXT,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "wallets" (
		"id" TEXT PRIMARY KEY,
		"user_id" TEXT NOT NULL UNIQUE,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "points_ledger" (
		"id" TEXT PRIMARY KEY,
		"wallet_id" TEXT NOT NULL,
		"delta" INTEGER NOT NULL,
		"event_type" TEXT NOT NULL,
		"reason" TEXT,
		"tenant_id" TEXT,
		"merchant_id" TEXT,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "user_profiles" (
		"user_id" TEXT PRIMARY KEY,
		"primary_tenant_id" TEXT,
		"created_at" DATETIME,
		"updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "user_tenants" (
		"user_id" TEXT NOT NULL,
		"tenant_id" TEXT NOT NULL,
		"created_at" DATETIME,
		PRIMARY KEY ("user_id", "tenant_id")
	)`,
	`CREATE VIEW IF NOT EXISTS "wallet_balance_total" AS
		SELECT w.id AS wallet_id, COALESCE(SUM(l.delta), 0) AS balance
		  FROM wallets w
		  LEFT JOIN points_ledger l ON l.wallet_id = w.id
		 GROUP BY w.id`,
	`CREATE VIEW IF NOT EXISTS "wallet_balance_by_tenant" AS
		SELECT l.wallet_id, l.tenant_id, SUM(l.delta) AS balance
		  FROM points_ledger l
		 GROUP BY l.wallet_id, l.tenant_id`,
	`CREATE TRIGGER IF NOT EXISTS points_ledger_no_update
		BEFORE UPDATE ON points_ledger
		BEGIN SELECT RAISE(ABORT, 'points_ledger is append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS points_ledger_no_delete
		BEFORE DELETE ON points_ledger
		BEGIN SELECT RAISE(ABORT, 'points_ledger is append-only'); END`,
}

// CreateSQLiteSchema applies the SQLite rendition of the schema, views and
// ledger guard included. Used for local development and tests.
func CreateSQLiteSchema(db *gorm.DB) error {
	for _, ddl := range sqliteSchema {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	return nil
}
