package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adityaraut/dairydrop-backend/pkg/enums"
)

// Coupon is a discount policy. Checkout only ever mutates TimesRedeemed,
// and only through the atomic conditional increment in the coupons repo.
type Coupon struct {
	ID             int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	Code           string                   `gorm:"column:code;not null;uniqueIndex"`
	Description    *string                  `gorm:"column:description"`
	DiscountType   enums.CouponDiscountType `gorm:"column:discount_type;not null"`
	DiscountValue  decimal.Decimal          `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MinSubtotal    decimal.Decimal          `gorm:"column:min_subtotal;type:numeric(10,2);not null;default:0"`
	MaxRedemptions *int                     `gorm:"column:max_redemptions"`
	TimesRedeemed  int                      `gorm:"column:times_redeemed;not null;default:0"`
	IsActive       bool                     `gorm:"column:is_active;not null;default:true"`
	StartsAt       *time.Time               `gorm:"column:starts_at"`
	ExpiresAt      *time.Time               `gorm:"column:expires_at"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
