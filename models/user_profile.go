package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds per-user settings. UserID is the auth provider's user id.
type UserProfile struct {
	UserID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	PrimaryTenantID *uuid.UUID `gorm:"type:uuid" json:"primary_tenant_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UserTenant records that a user has joined a tenant.
type UserTenant struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}
