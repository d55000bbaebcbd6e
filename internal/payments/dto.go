package payments

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
)

// InitiateInput opens a gateway order for the priced cart.
type InitiateInput struct {
	Items      []pricing.CartLine `json:"items" validate:"required,min=1,dive"`
	CouponCode *string            `json:"couponCode,omitempty" validate:"omitempty,min=3,max=50"`
}

// Normalize trims the coupon code, dropping it when blank.
func (in *InitiateInput) Normalize() {
	if in.CouponCode == nil {
		return
	}
	trimmed := strings.TrimSpace(*in.CouponCode)
	if trimmed == "" {
		in.CouponCode = nil
		return
	}
	in.CouponCode = &trimmed
}

// InitiatedPayment is handed to the browser to open the gateway widget.
type InitiatedPayment struct {
	TransactionID  int64           `json:"transactionId"`
	GatewayOrderID string          `json:"razorpayOrderId"`
	Currency       enums.Currency  `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	AmountPaise    int64           `json:"amountPaise"`
	KeyID          string          `json:"keyId"`
	CouponCode     *string         `json:"couponCode,omitempty"`
}

// ConfirmInput carries the gateway callback triplet.
type ConfirmInput struct {
	TransactionID    int64  `json:"transactionId" validate:"gt=0"`
	GatewayOrderID   string `json:"razorpayOrderId" validate:"required,min=10"`
	GatewayPaymentID string `json:"razorpayPaymentId" validate:"required,min=10"`
	GatewaySignature string `json:"razorpaySignature" validate:"required,min=10"`
}

// ConfirmedPayment acknowledges a captured payment.
type ConfirmedPayment struct {
	TransactionID int64           `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
}

// CancelInput abandons a transaction that never captured.
type CancelInput struct {
	TransactionID int64   `json:"transactionId" validate:"gt=0"`
	Reason        *string `json:"reason,omitempty" validate:"omitempty,min=3,max=200"`
}

// CancelledPayment reports the terminal status after a cancel request.
type CancelledPayment struct {
	TransactionID int64  `json:"transactionId"`
	Status        string `json:"status"`
}
