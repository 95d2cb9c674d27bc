package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"lifestyle-backend/database"
	"lifestyle-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100

	unattributedName  = "Unattributed"
	unknownTenantName = "Unknown tenant"
)

// BreakdownRow is a wallet's balance within one tenant. TenantID is nil for
// credit that was never attributed to a tenant.
type BreakdownRow struct {
	TenantID *uuid.UUID `json:"tenantId"`
	Slug     string     `json:"slug"`
	Name     string     `json:"name"`
	Balance  int64      `json:"balance"`
}

type LedgerItem struct {
	ID         uuid.UUID  `json:"id"`
	Delta      int        `json:"delta"`
	EventType  string     `json:"eventType"`
	Reason     string     `json:"reason"`
	TenantSlug *string    `json:"tenantSlug"`
	TenantName *string    `json:"tenantName"`
	MerchantID *uuid.UUID `json:"merchantId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// WalletSummary is the unified view of a user's points. Total always equals
// the sum of the breakdown balances.
type WalletSummary struct {
	WalletID  *uuid.UUID     `json:"walletId"`
	Total     int64          `json:"total"`
	Breakdown []BreakdownRow `json:"breakdown"`
	Recent    []LedgerItem   `json:"recent"`
}

type WalletService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewWalletService(db *gorm.DB, logger *zap.Logger) *WalletService {
	return &WalletService{db: db, logger: logger}
}

// NormalizeRecentLimit clamps a requested page size into [1, MaxRecentLimit],
// mapping non-positive values to the default.
func NormalizeRecentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

// Summary returns the wallet of userID. Reading never creates a wallet; a user
// without one gets an empty summary.
func (s *WalletService) Summary(ctx context.Context, userID uuid.UUID, limit int) (*WalletSummary, error) {
	limit = NormalizeRecentLimit(limit)
	summary := &WalletSummary{Breakdown: []BreakdownRow{}, Recent: []LedgerItem{}}

	wallet, err := findWallet(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, nil
		}
		return nil, newError(KindDownstream, "Could not load wallet.", err)
	}
	summary.WalletID = &wallet.ID

	// One snapshot so the total and the breakdown agree.
	var opts []*sql.TxOptions
	if database.IsPostgres(s.db) {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total models.WalletBalanceTotal
		if err := tx.Where("wallet_id = ?", wallet.ID).Limit(1).Find(&total).Error; err != nil {
			return err
		}
		summary.Total = total.Balance

		breakdown, err := loadBreakdown(tx, wallet.ID)
		if err != nil {
			return err
		}
		summary.Breakdown = breakdown

		recent, err := loadRecent(tx, wallet.ID, limit)
		if err != nil {
			return err
		}
		summary.Recent = recent
		return nil
	}, opts...)
	if err != nil {
		return nil, newError(KindDownstream, "Could not load wallet.", err)
	}

	return summary, nil
}

type breakdownScan struct {
	TenantID *uuid.UUID
	Slug     *string
	Name     *string
	Balance  int64
}

func loadBreakdown(tx *gorm.DB, walletID uuid.UUID) ([]BreakdownRow, error) {
	var scanned []breakdownScan
	if err := tx.Table("wallet_balance_by_tenant AS b").
		Select("b.tenant_id, t.slug, t.name, b.balance").
		Joins("LEFT JOIN tenants t ON t.id = b.tenant_id").
		Where("b.wallet_id = ?", walletID).
		Scan(&scanned).Error; err != nil {
		return nil, err
	}

	rows := make([]BreakdownRow, 0, len(scanned))
	for _, r := range scanned {
		row := BreakdownRow{TenantID: r.TenantID, Balance: r.Balance}
		switch {
		case r.TenantID == nil:
			row.Name = unattributedName
		case r.Slug == nil:
			row.Name = unknownTenantName
		default:
			row.Slug = *r.Slug
			if r.Name != nil {
				row.Name = *r.Name
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return breakdownRank(rows[i]) < breakdownRank(rows[j]) ||
			(breakdownRank(rows[i]) == breakdownRank(rows[j]) && rows[i].Slug < rows[j].Slug)
	})
	return rows, nil
}

// known tenants by slug, then tenants missing from the tenants table, then
// unattributed credit
func breakdownRank(r BreakdownRow) int {
	switch {
	case r.TenantID == nil:
		return 2
	case r.Slug == "":
		return 1
	default:
		return 0
	}
}

func loadRecent(tx *gorm.DB, walletID uuid.UUID, limit int) ([]LedgerItem, error) {
	items := []LedgerItem{}
	err := tx.Table("points_ledger AS l").
		Select("l.id, l.delta, l.event_type, l.reason, t.slug AS tenant_slug, t.name AS tenant_name, l.merchant_id, l.created_at").
		Joins("LEFT JOIN tenants t ON t.id = l.tenant_id").
		Where("l.wallet_id = ?", walletID).
		Order("l.created_at DESC, l.id DESC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}
