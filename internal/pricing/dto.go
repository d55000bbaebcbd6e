package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
)

// CartLine is one requested product with its quantity. Lines are
// ephemeral; they only exist inside a pricing or checkout request.
type CartLine struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0,lte=999"`
}

// Line is a priced cart line carrying the product snapshot used for it.
type Line struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Result is the authoritative monetary breakdown for a cart. It is
// derived, never persisted on its own; the order commit freezes it into
// the order row.
type Result struct {
	Lines      []Line          `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	CouponCode *string         `json:"couponCode,omitempty"`

	// Coupon is the policy row the discount came from, needed by the
	// order commit to increment its redemption counter. Never serialized.
	Coupon *models.Coupon `json:"-"`
}

// QuoteRequest is the payload for an advisory price preview. The
// authoritative re-price still happens inside the order transaction.
type QuoteRequest struct {
	Items      []CartLine `json:"items" validate:"required,min=1,dive"`
	CouponCode *string    `json:"couponCode,omitempty" validate:"omitempty,min=3,max=50"`
}

// Normalize trims the coupon code, dropping it entirely when blank.
func (r *QuoteRequest) Normalize() {
	if r.CouponCode != nil {
		trimmed := strings.TrimSpace(*r.CouponCode)
		if trimmed == "" {
			r.CouponCode = nil
		} else {
			r.CouponCode = &trimmed
		}
	}
}
