package models

import (
	"time"

	"github.com/google/uuid"
)

// EarnToken is a single-use reward code, usually printed as a QR code at a merchant.
type EarnToken struct {
	Code            string     `gorm:"primaryKey" json:"code"`
	Points          int        `gorm:"not null" json:"points"`
	ExpiresAt       time.Time  `gorm:"not null;index" json:"expires_at"`
	ClaimedAt       *time.Time `json:"claimed_at"`
	ClaimedByUserID *uuid.UUID `gorm:"type:uuid" json:"claimed_by_user_id,omitempty"`
	MerchantID      *uuid.UUID `gorm:"type:uuid;index" json:"merchant_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (t *EarnToken) IsClaimed() bool {
	return t.ClaimedAt != nil
}

// IsExpired reports whether the token can no longer be claimed at now.
// A token is expired from the instant of ExpiresAt onwards.
func (t *EarnToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
