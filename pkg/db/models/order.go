package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/adityaraut/dairydrop-backend/pkg/db/types"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
)

// Order is the durable record of a committed checkout. The monetary
// columns are a snapshot frozen at commit time; later catalog or coupon
// edits never touch them.
type Order struct {
	ID                   int64               `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNumber          string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID               int64               `gorm:"column:user_id;not null;index"`
	BillingAddressID     *int64              `gorm:"column:billing_address_id"`
	ShippingAddressID    *int64              `gorm:"column:shipping_address_id"`
	OrderType            enums.OrderType     `gorm:"column:order_type;not null;default:'one_time'"`
	ScheduleStartDate    *time.Time          `gorm:"column:schedule_start_date;type:date"`
	ScheduleEndDate      *time.Time          `gorm:"column:schedule_end_date;type:date"`
	ScheduleExceptDays   dbtypes.StringList  `gorm:"column:schedule_except_days;type:jsonb"`
	SchedulePaused       bool                `gorm:"column:schedule_paused;not null;default:false"`
	Status               enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentMethod        enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash_on_delivery'"`
	PaymentTransactionID *int64              `gorm:"column:payment_transaction_id;index"`
	CouponCode           *string             `gorm:"column:coupon_code"`
	SubtotalAmount       decimal.Decimal     `gorm:"column:subtotal_amount;type:numeric(10,2);not null;default:0"`
	DiscountAmount       decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	TaxAmount            decimal.Decimal     `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	ShippingAmount       decimal.Decimal     `gorm:"column:shipping_amount;type:numeric(10,2);not null;default:0"`
	TotalAmount          decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`
	Notes                *string             `gorm:"column:notes"`
	PlacedAt             time.Time           `gorm:"column:placed_at;not null;autoCreateTime"`
	Items                []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
