package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	dbtypes "github.com/adityaraut/dairydrop-backend/pkg/db/types"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
	"github.com/adityaraut/dairydrop-backend/pkg/metrics"
	"github.com/adityaraut/dairydrop-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway is the slice of the payment gateway client this service needs.
type Gateway interface {
	Configured() bool
	KeyID() string
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*razorpay.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Service drives a payment transaction through its lifecycle: initiate
// opens a gateway order, confirm settles the browser callback, cancel
// abandons an uncaptured attempt.
type Service interface {
	Initiate(ctx context.Context, userID int64, input InitiateInput) (*InitiatedPayment, error)
	Confirm(ctx context.Context, userID int64, input ConfirmInput) (*ConfirmedPayment, error)
	Cancel(ctx context.Context, userID int64, input CancelInput) (*CancelledPayment, error)
}

type service struct {
	tx         txRunner
	repo       Repository
	pricingSvc pricing.Service
	gateway    Gateway
	checkout   *metrics.CheckoutMetrics
	currency   enums.Currency
}

// NewService wires the payment lifecycle service. A nil gateway is allowed;
// every online operation then fails with a gateway-not-configured error
// while cash checkouts keep working.
func NewService(
	tx txRunner,
	repo Repository,
	pricingSvc pricing.Service,
	gateway Gateway,
	checkout *metrics.CheckoutMetrics,
	currency enums.Currency,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if currency == "" {
		currency = enums.CurrencyINR
	}
	return &service{
		tx:         tx,
		repo:       repo,
		pricingSvc: pricingSvc,
		gateway:    gateway,
		checkout:   checkout,
		currency:   currency,
	}, nil
}

func (s *service) gatewayReady() error {
	if s.gateway == nil || !s.gateway.Configured() {
		return pkgerrors.New(pkgerrors.CodeGateway, "payment gateway is not configured").
			WithReason(pkgerrors.ReasonGatewayUnconfigured)
	}
	return nil
}

// Initiate prices the cart, persists a transaction in the created state,
// and only then registers the order with the gateway. A gateway failure
// therefore leaves an auditable created row behind instead of nothing.
func (s *service) Initiate(ctx context.Context, userID int64, input InitiateInput) (*InitiatedPayment, error) {
	if err := s.gatewayReady(); err != nil {
		return nil, err
	}
	input.Normalize()

	quote, err := s.pricingSvc.Quote(ctx, input.Items, input.CouponCode)
	if err != nil {
		return nil, err
	}

	amountPaise := amountToPaise(quote.Total)
	if amountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be greater than zero")
	}

	couponCode := ""
	if quote.CouponCode != nil {
		couponCode = *quote.CouponCode
	}
	items := make([]map[string]any, 0, len(input.Items))
	for _, line := range input.Items {
		items = append(items, map[string]any{
			"productId": line.ProductID,
			"quantity":  line.Quantity,
		})
	}

	txn := &models.PaymentTransaction{
		UserID:      userID,
		Gateway:     enums.PaymentGatewayRazorpay,
		Status:      enums.PaymentStatusCreated,
		Amount:      quote.Total,
		AmountPaise: amountPaise,
		Currency:    s.currency,
		Notes: dbtypes.JSONMap{
			"userId":     userID,
			"couponCode": couponCode,
		},
		Metadata: dbtypes.JSONMap{
			"items": items,
		},
	}
	if _, err := s.repo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("creating payment transaction: %w", err)
	}

	receipt := "txn_" + strconv.FormatInt(txn.ID, 10)
	start := time.Now()
	order, err := s.gateway.CreateOrder(ctx, amountPaise, s.currency.String(), receipt, map[string]string{
		"transactionId": strconv.FormatInt(txn.ID, 10),
		"userId":        strconv.FormatInt(userID, 10),
		"couponCode":    couponCode,
	})
	s.checkout.ObserveGatewayDuration("create_order", time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "failed to create gateway order").
			WithReason(pkgerrors.ReasonGatewayUnavailable)
	}

	persistedReceipt := order.Receipt
	if persistedReceipt == "" {
		persistedReceipt = receipt
	}
	err = s.repo.Update(ctx, txn, map[string]any{
		"status":           enums.PaymentStatusPending,
		"gateway_order_id": order.ID,
		"receipt":          persistedReceipt,
	})
	if err != nil {
		return nil, fmt.Errorf("updating payment transaction: %w", err)
	}

	return &InitiatedPayment{
		TransactionID:  txn.ID,
		GatewayOrderID: order.ID,
		Currency:       s.currency,
		Amount:         txn.Amount,
		AmountPaise:    txn.AmountPaise,
		KeyID:          s.gateway.KeyID(),
		CouponCode:     quote.CouponCode,
	}, nil
}

// Confirm settles the browser callback. The transaction row is locked for
// the whole check sequence so two concurrent confirmations serialize and
// the loser sees the idempotent already-paid path.
func (s *service) Confirm(ctx context.Context, userID int64, input ConfirmInput) (*ConfirmedPayment, error) {
	if err := s.gatewayReady(); err != nil {
		return nil, err
	}

	var confirmed *ConfirmedPayment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, err := repo.FindByIDForUpdate(ctx, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found").
					WithReason(pkgerrors.ReasonTransactionNotFound)
			}
			return fmt.Errorf("locking payment transaction: %w", err)
		}
		if txn.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "payment transaction belongs to another user")
		}

		if txn.Status == enums.PaymentStatusPaid {
			confirmed = &ConfirmedPayment{TransactionID: txn.ID, Amount: txn.Amount}
			s.checkout.IncConfirmation("idempotent")
			return nil
		}
		if txn.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment transaction already finalized").
				WithReason(pkgerrors.ReasonTransactionFinalized)
		}

		if txn.GatewayOrderID == nil || *txn.GatewayOrderID != input.GatewayOrderID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order mismatch for transaction").
				WithReason(pkgerrors.ReasonOrderMismatch)
		}

		if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment signature").
				WithReason(pkgerrors.ReasonSignatureMismatch)
		}

		start := time.Now()
		payment, err := s.gateway.FetchPayment(ctx, input.GatewayPaymentID)
		s.checkout.ObserveGatewayDuration("fetch_payment", time.Since(start))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "failed to verify payment with the gateway").
				WithReason(pkgerrors.ReasonGatewayUnavailable)
		}

		if payment.OrderID != input.GatewayOrderID {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment does not belong to this order").
				WithReason(pkgerrors.ReasonOrderMismatch)
		}
		if !payment.Captured() {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment not captured").
				WithReason(pkgerrors.ReasonPaymentNotCaptured)
		}
		if payment.AmountPaise != txn.AmountPaise {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment amount mismatch").
				WithReason(pkgerrors.ReasonAmountMismatch)
		}

		err = repo.Update(ctx, txn, map[string]any{
			"status":             enums.PaymentStatusPaid,
			"gateway_payment_id": input.GatewayPaymentID,
			"gateway_signature":  input.GatewaySignature,
		})
		if err != nil {
			return fmt.Errorf("marking transaction paid: %w", err)
		}

		confirmed = &ConfirmedPayment{TransactionID: txn.ID, Amount: txn.Amount}
		return nil
	})
	if err != nil {
		s.recordConfirmationFailure(err)
		return nil, err
	}
	s.checkout.IncConfirmation("confirmed")
	return confirmed, nil
}

// Cancel abandons a transaction that never captured. Cancelling an already
// cancelled or failed transaction is a no-op; captured or order-linked
// transactions refuse with a conflict.
func (s *service) Cancel(ctx context.Context, userID int64, input CancelInput) (*CancelledPayment, error) {
	var cancelled *CancelledPayment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, err := repo.FindByIDForUpdate(ctx, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found").
					WithReason(pkgerrors.ReasonTransactionNotFound)
			}
			return fmt.Errorf("locking payment transaction: %w", err)
		}
		if txn.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "payment transaction belongs to another user")
		}

		if txn.Status == enums.PaymentStatusCancelled || txn.Status == enums.PaymentStatusFailed {
			cancelled = &CancelledPayment{TransactionID: txn.ID, Status: txn.Status.String()}
			return nil
		}
		if txn.Status == enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "captured payments cannot be cancelled")
		}
		if txn.OrderID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment already linked to an order").
				WithReason(pkgerrors.ReasonPaymentLinked)
		}

		description := "Payment cancelled by user"
		if input.Reason != nil && *input.Reason != "" {
			description = *input.Reason
		}
		err = repo.Update(ctx, txn, map[string]any{
			"status":            enums.PaymentStatusCancelled,
			"error_code":        "user_cancelled",
			"error_description": description,
		})
		if err != nil {
			return fmt.Errorf("cancelling transaction: %w", err)
		}

		cancelled = &CancelledPayment{TransactionID: txn.ID, Status: enums.PaymentStatusCancelled.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) recordConfirmationFailure(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		s.checkout.IncConfirmation("error")
		return
	}
	outcome := string(typed.Reason())
	if outcome == "" {
		outcome = "rejected"
	}
	s.checkout.IncConfirmation(outcome)
}

// amountToPaise converts a rupee amount to integer paise, rounding half
// away from zero on any sub-paisa remainder.
func amountToPaise(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
