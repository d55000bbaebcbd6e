package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adityaraut/dairydrop-backend/internal/address"
	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
)

// CreateOrderInput is the full checkout payload. Addresses can reference
// saved rows or arrive inline; online payments must reference a captured
// payment transaction.
type CreateOrderInput struct {
	Items                []pricing.CartLine  `json:"items" validate:"required,min=1,dive"`
	PaymentMethod        enums.PaymentMethod `json:"paymentMethod"`
	PaymentTransactionID *int64              `json:"paymentTransactionId,omitempty"`
	CouponCode           *string             `json:"couponCode,omitempty" validate:"omitempty,min=3,max=50"`
	ShippingAddressID    *int64              `json:"shippingAddressId,omitempty"`
	BillingAddressID     *int64              `json:"billingAddressId,omitempty"`
	ShippingAddress      *address.Input      `json:"shippingAddress,omitempty"`
	BillingAddress       *address.Input      `json:"billingAddress,omitempty"`
	Notes                *string             `json:"notes,omitempty" validate:"omitempty,max=500"`
	OrderType            enums.OrderType     `json:"orderType"`
	ScheduleStartDate    *time.Time          `json:"scheduleStartDate,omitempty"`
	ScheduleEndDate      *time.Time          `json:"scheduleEndDate,omitempty"`
	ScheduleExceptDays   []string            `json:"scheduleExceptDays,omitempty"`
	SchedulePause        bool                `json:"schedulePause"`
}

// Normalize fills defaults and canonicalizes free-form fields before
// validation. Except-day names are lowercased and deduplicated keeping
// first occurrence order.
func (in *CreateOrderInput) Normalize() {
	if in.PaymentMethod == "" {
		in.PaymentMethod = enums.PaymentMethodCashOnDelivery
	}
	if in.OrderType == "" {
		in.OrderType = enums.OrderTypeOneTime
	}
	if in.CouponCode != nil {
		trimmed := strings.TrimSpace(*in.CouponCode)
		if trimmed == "" {
			in.CouponCode = nil
		} else {
			in.CouponCode = &trimmed
		}
	}
	if len(in.ScheduleExceptDays) > 0 {
		seen := make(map[string]struct{}, len(in.ScheduleExceptDays))
		ordered := make([]string, 0, len(in.ScheduleExceptDays))
		for _, day := range in.ScheduleExceptDays {
			lower := strings.ToLower(strings.TrimSpace(day))
			if lower == "" {
				continue
			}
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			ordered = append(ordered, lower)
		}
		in.ScheduleExceptDays = ordered
	}
}

// Validate enforces the cross-field rules struct tags cannot express.
func (in *CreateOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required").
			WithReason(pkgerrors.ReasonEmptyOrder)
	}
	if !in.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if !in.OrderType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported order type")
	}
	if in.ShippingAddressID == nil && in.ShippingAddress == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required").
			WithReason(pkgerrors.ReasonAddressNotFound)
	}
	if in.PaymentMethod.RequiresGateway() && in.PaymentTransactionID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment transaction is required for online payments")
	}
	if !in.PaymentMethod.RequiresGateway() && in.PaymentTransactionID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment transaction should not be sent for cash on delivery orders")
	}
	if in.OrderType == enums.OrderTypeScheduled {
		if in.ScheduleStartDate == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "schedule start date is required for scheduled deliveries")
		}
		if in.ScheduleEndDate != nil && in.ScheduleEndDate.Before(*in.ScheduleStartDate) {
			return pkgerrors.New(pkgerrors.CodeValidation, "schedule end date must be after the start date")
		}
	}
	return nil
}

// CreatedOrder is the commit receipt returned to the buyer.
type CreatedOrder struct {
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	CouponCode  *string         `json:"couponCode,omitempty"`
}

// OrderItemDTO is the transport shape of a priced order line.
type OrderItemDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// OrderDTO is the transport shape of a committed order.
type OrderDTO struct {
	OrderNumber    string              `json:"orderNumber"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"paymentStatus"`
	PaymentMethod  enums.PaymentMethod `json:"paymentMethod"`
	OrderType      enums.OrderType     `json:"orderType"`
	CouponCode     *string             `json:"couponCode,omitempty"`
	SubtotalAmount decimal.Decimal     `json:"subtotalAmount"`
	DiscountAmount decimal.Decimal     `json:"discountAmount"`
	TaxAmount      decimal.Decimal     `json:"taxAmount"`
	ShippingAmount decimal.Decimal     `json:"shippingAmount"`
	TotalAmount    decimal.Decimal     `json:"totalAmount"`
	Notes          *string             `json:"notes,omitempty"`
	PlacedAt       time.Time           `json:"placedAt"`
	Items          []OrderItemDTO      `json:"items"`
}

// OrderFromModel maps a persisted order onto its transport shape.
func OrderFromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}

	return &OrderDTO{
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		PaymentMethod:  o.PaymentMethod,
		OrderType:      o.OrderType,
		CouponCode:     o.CouponCode,
		SubtotalAmount: o.SubtotalAmount,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		ShippingAmount: o.ShippingAmount,
		TotalAmount:    o.TotalAmount,
		Notes:          o.Notes,
		PlacedAt:       o.PlacedAt,
		Items:          items,
	}
}

// OrdersFromModels maps a slice of orders onto their transport shapes.
func OrdersFromModels(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *OrderFromModel(&orders[i]))
	}
	return out
}
