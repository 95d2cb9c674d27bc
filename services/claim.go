package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifestyle-backend/models"
	"lifestyle-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClaimResult describes a successful claim.
type ClaimResult struct {
	Points       int
	MerchantName *string
	WalletID     uuid.UUID
	TokenCode    string
}

// ClaimService redeems earn tokens into a user's wallet.
type ClaimService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewClaimService(db *gorm.DB, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *ClaimService) WithClock(now func() time.Time) *ClaimService {
	s.now = now
	return s
}

type attribution struct {
	merchantID   *uuid.UUID
	tenantID     *uuid.UUID
	merchantName *string
}

// Claim redeems code for userID. The token is marked claimed and the wallet
// credited in a single transaction; a token is never claimed without credit.
func (s *ClaimService) Claim(ctx context.Context, userID uuid.UUID, code string) (*ClaimResult, error) {
	code = utils.NormalizeClaimCode(code)
	if code == "" {
		return nil, newError(KindValidation, "Missing code", nil)
	}
	if userID == uuid.Nil {
		return nil, newError(KindValidation, "Missing user", nil)
	}

	var token models.EarnToken
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Invalid or unknown code.", nil)
		}
		return nil, newError(KindDownstream, "Could not look up code.", err)
	}

	if token.IsClaimed() {
		return nil, newError(KindConflict, "This code was already claimed.", nil)
	}

	now := s.now()
	if token.IsExpired(now) {
		return nil, newError(KindGone, "This code has expired.", nil)
	}

	wallet, err := ensureWallet(ctx, s.db, userID)
	if err != nil {
		return nil, newError(KindDownstream, "Failed to create wallet.", err)
	}

	attr := s.attribute(ctx, token.MerchantID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.EarnToken{}).
			Where("code = ? AND claimed_at IS NULL", token.Code).
			Updates(map[string]interface{}{
				"claimed_at":         now,
				"claimed_by_user_id": userID,
			})
		if res.Error != nil {
			return newError(KindDownstream, "Could not mark token claimed.", res.Error)
		}
		if res.RowsAffected == 0 {
			// lost the race to another claimer
			return newError(KindConflict, "This code was already claimed.", nil)
		}

		entry := models.PointsLedgerEntry{
			WalletID:   wallet.ID,
			Delta:      token.Points,
			EventType:  models.EventMerchantAward,
			Reason:     awardReason(attr.merchantName),
			TenantID:   attr.tenantID,
			MerchantID: attr.merchantID,
			CreatedAt:  now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return newError(KindDownstream, "Could not write ledger.", err)
		}
		return nil
	})
	if err != nil {
		var svcErr *Error
		if !errors.As(err, &svcErr) {
			err = newError(KindDownstream, "Could not write ledger.", err)
		}
		return nil, err
	}

	s.logger.Info("earn token claimed",
		zap.String("code", token.Code),
		zap.String("user_id", userID.String()),
		zap.String("wallet_id", wallet.ID.String()),
		zap.Int("points", token.Points),
	)

	return &ClaimResult{
		Points:       token.Points,
		MerchantName: attr.merchantName,
		WalletID:     wallet.ID,
		TokenCode:    token.Code,
	}, nil
}

// attribute loads the merchant behind a token. Lookup failures only cost the
// attribution, never the claim.
func (s *ClaimService) attribute(ctx context.Context, merchantID *uuid.UUID) attribution {
	if merchantID == nil {
		return attribution{}
	}

	var merchant models.Merchant
	if err := s.db.WithContext(ctx).Where("id = ?", *merchantID).First(&merchant).Error; err != nil {
		s.logger.Warn("merchant lookup failed; awarding without attribution",
			zap.String("merchant_id", merchantID.String()), zap.Error(err))
		return attribution{}
	}

	name := merchant.Name
	return attribution{
		merchantID:   &merchant.ID,
		tenantID:     merchant.TenantID,
		merchantName: &name,
	}
}

func awardReason(merchantName *string) string {
	if merchantName == nil || *merchantName == "" {
		return "Award from merchant"
	}
	return fmt.Sprintf("Award from %s", *merchantName)
}
