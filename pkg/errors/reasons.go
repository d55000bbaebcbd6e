package errors

// Reason is a stable machine-readable identifier for a domain failure.
// One Code can cover several Reasons; the Reason is what API clients
// switch on.
type Reason string

const (
	ReasonCouponNotFound    Reason = "coupon_not_found"
	ReasonCouponInvalid     Reason = "coupon_invalid"
	ReasonCouponInactive    Reason = "coupon_inactive"
	ReasonCouponNotStarted  Reason = "coupon_not_started"
	ReasonCouponExpired     Reason = "coupon_expired"
	ReasonCouponMinSubtotal Reason = "coupon_min_subtotal_not_met"
	ReasonCouponExhausted   Reason = "coupon_redemption_limit_reached"
	ReasonProductNotFound   Reason = "product_not_found"
	ReasonProductInactive   Reason = "product_inactive"
	ReasonInsufficientStock Reason = "insufficient_stock"
	ReasonEmptyOrder        Reason = "empty_order"
	ReasonAddressNotFound   Reason = "address_not_found"

	ReasonOrderNumberCollision Reason = "order_number_collision"

	ReasonOrderNotFound        Reason = "order_not_found"
	ReasonTransactionNotFound  Reason = "transaction_not_found"
	ReasonTransactionFinalized Reason = "transaction_finalized"
	ReasonOrderNotPending      Reason = "order_not_payable"
	ReasonOrderMismatch        Reason = "gateway_order_mismatch"
	ReasonSignatureMismatch    Reason = "signature_verification_failed"
	ReasonAmountMismatch       Reason = "amount_mismatch"
	ReasonPaymentNotCaptured   Reason = "payment_not_captured"
	ReasonPaymentLinked        Reason = "payment_already_linked"
	ReasonGatewayUnconfigured  Reason = "gateway_not_configured"
	ReasonGatewayUnavailable   Reason = "gateway_unavailable"
)
