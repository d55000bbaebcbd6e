package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/adityaraut/dairydrop-backend/pkg/db/types"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
)

// PaymentTransaction records one attempt to collect money through the
// gateway. Rows are never deleted; status only moves along the
// confirmation state machine.
type PaymentTransaction struct {
	ID               int64                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64                `gorm:"column:user_id;not null;index"`
	Gateway          enums.PaymentGateway `gorm:"column:gateway;not null;default:'razorpay'"`
	Status           enums.PaymentStatus  `gorm:"column:status;not null;default:'created'"`
	Amount           decimal.Decimal      `gorm:"column:amount;type:numeric(10,2);not null"`
	AmountPaise      int64                `gorm:"column:amount_paise;not null"`
	Currency         enums.Currency       `gorm:"column:currency;not null;default:'INR'"`
	GatewayOrderID   *string              `gorm:"column:gateway_order_id;uniqueIndex"`
	GatewayPaymentID *string              `gorm:"column:gateway_payment_id"`
	GatewaySignature *string              `gorm:"column:gateway_signature"`
	Receipt          *string              `gorm:"column:receipt"`
	Notes            dbtypes.JSONMap      `gorm:"column:notes;type:jsonb"`
	Metadata         dbtypes.JSONMap      `gorm:"column:metadata;type:jsonb"`
	ErrorCode        *string              `gorm:"column:error_code"`
	ErrorDescription *string              `gorm:"column:error_description"`
	OrderID          *int64               `gorm:"column:order_id;index"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
