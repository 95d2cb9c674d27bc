package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventMerchantAward = "merchant_award"
)

// PointsLedgerEntry is an immutable signed movement of points into or out of a wallet.
// Rows are only ever inserted; balances are derived by summing Delta.
type PointsLedgerEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WalletID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Delta      int        `gorm:"not null" json:"delta"`
	EventType  string     `gorm:"not null" json:"event_type"`
	Reason     string     `json:"reason"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id,omitempty"`
	MerchantID *uuid.UUID `gorm:"type:uuid" json:"merchant_id,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (PointsLedgerEntry) TableName() string {
	return "points_ledger"
}

func (e *PointsLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
