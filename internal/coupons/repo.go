package coupons

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
)

// Repository manages coupon lookups and the atomic redemption counter.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementRedemption(ctx context.Context, couponID int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a coupons repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByCode matches the code case-insensitively; customers type coupon
// codes by hand.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("lower(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// IncrementRedemption bumps times_redeemed by one, but only while the cap
// has not been reached. It reports false when the conditional update matched
// no row, which callers must treat as the redemption limit being hit by a
// concurrent checkout.
func (r *repository) IncrementRedemption(ctx context.Context, couponID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND (max_redemptions IS NULL OR times_redeemed < max_redemptions)", couponID).
		UpdateColumn("times_redeemed", gorm.Expr("times_redeemed + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
