package services

import (
	"context"
	"errors"

	"lifestyle-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func findWallet(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ensureWallet returns the user's wallet, creating it on first use. Creation
// never overwrites an existing row, so a concurrent creator simply wins and
// both callers see the same wallet.
func ensureWallet(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := findWallet(ctx, db, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.Wallet{UserID: userID}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&created).Error; err != nil {
		return nil, err
	}

	return findWallet(ctx, db, userID)
}
