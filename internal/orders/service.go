package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/internal/address"
	"github.com/adityaraut/dairydrop-backend/internal/coupons"
	"github.com/adityaraut/dairydrop-backend/internal/inventory"
	"github.com/adityaraut/dairydrop-backend/internal/payments"
	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/pkg/db"
	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	dbtypes "github.com/adityaraut/dairydrop-backend/pkg/db/types"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
	"github.com/adityaraut/dairydrop-backend/pkg/metrics"
)

const stockOutNote = "Order deduction"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service commits checkouts. Everything between re-pricing and the coupon
// increment happens in one transaction so a failed step leaves no trace.
type Service interface {
	Create(ctx context.Context, userID int64, input CreateOrderInput) (*CreatedOrder, error)
	GetByNumber(ctx context.Context, userID int64, orderNumber string) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]models.Order, error)
}

type service struct {
	tx            txRunner
	repo          Repository
	pricingSvc    pricing.Service
	addressSvc    address.Service
	inventoryRepo inventory.Repository
	couponRepo    coupons.Repository
	paymentRepo   payments.Repository
	checkout      *metrics.CheckoutMetrics
	numberPrefix  string
	numberRetries int
}

// Options tune order number generation.
type Options struct {
	OrderNumberPrefix  string
	OrderNumberRetries int
}

// NewService wires the order commit pipeline.
func NewService(
	tx txRunner,
	repo Repository,
	pricingSvc pricing.Service,
	addressSvc address.Service,
	inventoryRepo inventory.Repository,
	couponRepo coupons.Repository,
	paymentRepo payments.Repository,
	checkout *metrics.CheckoutMetrics,
	opts Options,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if addressSvc == nil {
		return nil, fmt.Errorf("address service required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if paymentRepo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	retries := opts.OrderNumberRetries
	if retries <= 0 {
		retries = 3
	}
	return &service{
		tx:            tx,
		repo:          repo,
		pricingSvc:    pricingSvc,
		addressSvc:    addressSvc,
		inventoryRepo: inventoryRepo,
		couponRepo:    couponRepo,
		paymentRepo:   paymentRepo,
		checkout:      checkout,
		numberPrefix:  opts.OrderNumberPrefix,
		numberRetries: retries,
	}, nil
}

// Create prices the cart inside the transaction, validates any referenced
// payment, resolves addresses, writes the order with its items and stock
// movements, and redeems the coupon. A unique collision on the order number
// retries the whole transaction with a fresh number.
func (s *service) Create(ctx context.Context, userID int64, input CreateOrderInput) (*CreatedOrder, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	var created *CreatedOrder
	var err error
	for attempt := 0; attempt < s.numberRetries; attempt++ {
		created, err = s.createOnce(ctx, userID, input)
		if err != nil && db.IsUniqueViolation(err, "order_number") {
			continue
		}
		break
	}
	if err != nil {
		if db.IsUniqueViolation(err, "order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a unique order number").
				WithReason(pkgerrors.ReasonOrderNumberCollision)
		}
		s.recordRejection(err)
		return nil, err
	}

	s.checkout.IncOrderCreated(input.PaymentMethod.String())
	return created, nil
}

func (s *service) createOnce(ctx context.Context, userID int64, input CreateOrderInput) (*CreatedOrder, error) {
	var receipt *CreatedOrder

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := s.pricingSvc.WithTx(tx).Quote(ctx, input.Items, input.CouponCode)
		if err != nil {
			return err
		}

		paymentStatus := enums.PaymentStatusPending
		var paymentTxn *models.PaymentTransaction
		if input.PaymentMethod.RequiresGateway() {
			paymentTxn, err = s.validatePaymentTransaction(ctx, tx, userID, *input.PaymentTransactionID, quote)
			if err != nil {
				return err
			}
			paymentStatus = enums.PaymentStatusPaid
		}

		addressSvc := s.addressSvc.WithTx(tx)
		shippingID, err := addressSvc.ResolveOrCreate(ctx, userID, address.Selection{
			AddressID: input.ShippingAddressID,
			Inline:    input.ShippingAddress,
		}, "shipping")
		if err != nil {
			return err
		}

		billingSel := address.Selection{AddressID: input.BillingAddressID, Inline: input.BillingAddress}
		if billingSel.Empty() {
			billingSel = address.Selection{AddressID: input.ShippingAddressID, Inline: input.ShippingAddress}
		}
		billingID, err := addressSvc.ResolveOrCreate(ctx, userID, billingSel, "billing")
		if err != nil {
			return err
		}

		order := &models.Order{
			OrderNumber:        GenerateOrderNumber(s.numberPrefix),
			UserID:             userID,
			BillingAddressID:   &billingID,
			ShippingAddressID:  &shippingID,
			OrderType:          input.OrderType,
			ScheduleStartDate:  input.ScheduleStartDate,
			ScheduleEndDate:    input.ScheduleEndDate,
			ScheduleExceptDays: dbtypes.StringList(input.ScheduleExceptDays),
			SchedulePaused:     input.SchedulePause,
			Status:             enums.OrderStatusPending,
			PaymentStatus:      paymentStatus,
			PaymentMethod:      input.PaymentMethod,
			CouponCode:         quote.CouponCode,
			SubtotalAmount:     quote.Subtotal,
			DiscountAmount:     quote.Discount,
			TaxAmount:          quote.Tax,
			ShippingAmount:     quote.Shipping,
			TotalAmount:        quote.Total,
			Notes:              input.Notes,
		}
		if paymentTxn != nil {
			order.PaymentTransactionID = &paymentTxn.ID
		}

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(quote.Lines))
		movements := make([]models.InventoryMovement, 0, len(quote.Lines))
		note := stockOutNote
		for _, line := range quote.Lines {
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
				TotalPrice:  line.LineTotal,
			})
			movements = append(movements, models.InventoryMovement{
				ProductID:  line.ProductID,
				ChangeType: enums.InventoryChangeStockOut,
				Quantity:   line.Quantity,
				Note:       &note,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		if err := s.inventoryRepo.WithTx(tx).CreateMovements(ctx, movements); err != nil {
			return err
		}

		if paymentTxn != nil {
			err := s.paymentRepo.WithTx(tx).Update(ctx, paymentTxn, map[string]any{"order_id": order.ID})
			if err != nil {
				return err
			}
		}

		if quote.Coupon != nil {
			redeemed, err := s.couponRepo.WithTx(tx).IncrementRedemption(ctx, quote.Coupon.ID)
			if err != nil {
				return err
			}
			if !redeemed {
				return pkgerrors.New(pkgerrors.CodeValidation, "coupon redemption limit reached").
					WithReason(pkgerrors.ReasonCouponExhausted)
			}
		}

		receipt = &CreatedOrder{
			OrderNumber: order.OrderNumber,
			TotalAmount: order.TotalAmount,
			Subtotal:    order.SubtotalAmount,
			Discount:    order.DiscountAmount,
			CouponCode:  order.CouponCode,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// validatePaymentTransaction locks the referenced transaction and checks it
// is the caller's, captured, unused, and priced exactly like this cart.
func (s *service) validatePaymentTransaction(ctx context.Context, tx *gorm.DB, userID, txnID int64, quote *pricing.Result) (*models.PaymentTransaction, error) {
	txn, err := s.paymentRepo.WithTx(tx).FindByIDForUpdate(ctx, txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment transaction not found").
				WithReason(pkgerrors.ReasonTransactionNotFound)
		}
		return nil, fmt.Errorf("locking payment transaction: %w", err)
	}
	if txn.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment transaction belongs to another user")
	}
	if txn.Gateway != enums.PaymentGatewayRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment gateway")
	}
	if txn.Status != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment not captured yet").
			WithReason(pkgerrors.ReasonPaymentNotCaptured)
	}
	if txn.OrderID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment transaction already used").
			WithReason(pkgerrors.ReasonPaymentLinked)
	}
	if !txn.Amount.Equal(quote.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount does not match the order total").
			WithReason(pkgerrors.ReasonAmountMismatch)
	}
	return txn, nil
}

func (s *service) GetByNumber(ctx context.Context, userID int64, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindOwnedByNumber(ctx, orderNumber, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithReason(pkgerrors.ReasonOrderNotFound)
		}
		return nil, fmt.Errorf("looking up order: %w", err)
	}
	return order, nil
}

func (s *service) ListForUser(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

func (s *service) recordRejection(err error) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Reason() == "" {
		return
	}
	s.checkout.IncPricingRejection(string(typed.Reason()))
}
