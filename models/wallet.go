package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WalletBalanceTotal is a row of the wallet_balance_total view.
type WalletBalanceTotal struct {
	WalletID uuid.UUID `json:"wallet_id"`
	Balance  int64     `json:"balance"`
}

func (WalletBalanceTotal) TableName() string {
	return "wallet_balance_total"
}

// WalletBalanceByTenant is a row of the wallet_balance_by_tenant view.
// TenantID is nil for credit that was never attributed to a tenant.
type WalletBalanceByTenant struct {
	WalletID uuid.UUID  `json:"wallet_id"`
	TenantID *uuid.UUID `json:"tenant_id"`
	Balance  int64      `json:"balance"`
}

func (WalletBalanceByTenant) TableName() string {
	return "wallet_balance_by_tenant"
}
