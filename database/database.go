package database

import (
	"fmt"
	"strings"

	"lifestyle-backend/config"
	"lifestyle-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sqlitePrefix = "sqlite:"

// Connect opens the database named by dsn. A dsn of the form "sqlite:<path>"
// opens a local SQLite file with the schema applied, for development without
// Postgres. Anything else is handed to the Postgres driver.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=lifestyle port=5432 sslmode=disable"
	}

	if strings.HasPrefix(dsn, sqlitePrefix) {
		db, err := gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix)), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, err
		}
		if err := CreateSQLiteSchema(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// IsPostgres reports whether db talks to Postgres.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func Migrate(db *gorm.DB) error {
	if !IsPostgres(db) {
		// SQLite databases get their schema in Connect.
		return nil
	}

	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Merchant{},
		&models.EarnToken{},
		&models.Wallet{},
		&models.PointsLedgerEntry{},
		&models.UserProfile{},
		&models.UserTenant{},
	); err != nil {
		return err
	}

	if err := createBalanceViews(db); err != nil {
		return err
	}

	return protectLedger(db)
}

// createBalanceViews (re)defines the derived balance views. Safe to run repeatedly.
func createBalanceViews(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE OR REPLACE VIEW wallet_balance_total AS
		SELECT w.id AS wallet_id, COALESCE(SUM(l.delta), 0)::bigint AS balance
		  FROM wallets w
		  LEFT JOIN points_ledger l ON l.wallet_id = w.id
		 GROUP BY w.id;
	`).Error; err != nil {
		return fmt.Errorf("failed to create wallet_balance_total view: %w", err)
	}

	if err := db.Exec(`
		CREATE OR REPLACE VIEW wallet_balance_by_tenant AS
		SELECT l.wallet_id, l.tenant_id, SUM(l.delta)::bigint AS balance
		  FROM points_ledger l
		 GROUP BY l.wallet_id, l.tenant_id;
	`).Error; err != nil {
		return fmt.Errorf("failed to create wallet_balance_by_tenant view: %w", err)
	}

	return nil
}

// protectLedger installs a trigger that rejects UPDATE and DELETE on points_ledger.
func protectLedger(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE OR REPLACE FUNCTION points_ledger_append_only() RETURNS trigger AS $$
		BEGIN
		  RAISE EXCEPTION 'points_ledger is append-only';
		END;
		$$ LANGUAGE plpgsql;
	`).Error; err != nil {
		return fmt.Errorf("failed to create ledger guard function: %w", err)
	}

	if err := db.Exec(`DROP TRIGGER IF EXISTS points_ledger_no_mutation ON points_ledger;`).Error; err != nil {
		return fmt.Errorf("failed to drop ledger guard trigger: %w", err)
	}

	if err := db.Exec(`
		CREATE TRIGGER points_ledger_no_mutation
		BEFORE UPDATE OR DELETE ON points_ledger
		FOR EACH ROW EXECUTE FUNCTION points_ledger_append_only();
	`).Error; err != nil {
		return fmt.Errorf("failed to create ledger guard trigger: %w", err)
	}

	return nil
}

// SeedTenants makes sure every catalog tenant has a row, keyed by slug.
// Existing rows keep their id and logo; only the display name is refreshed.
func SeedTenants(db *gorm.DB, catalog *config.TenantCatalog, logger *zap.Logger) error {
	for _, meta := range catalog.Tenants {
		tenant := models.Tenant{Name: meta.Name, Slug: meta.Slug}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&tenant).Error; err != nil {
			return fmt.Errorf("failed to seed tenant %s: %w", meta.Slug, err)
		}
	}

	logger.Info("tenants seeded", zap.Int("count", len(catalog.Tenants)))
	return nil
}
