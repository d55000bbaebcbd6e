package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/internal/catalog"
	"github.com/adityaraut/dairydrop-backend/internal/coupons"
	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Service prices a cart against the live catalog and coupon state. It has
// no side effects: redemption counters and inventory are only touched at
// order commit, so a pricing preview never consumes anything.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Quote(ctx context.Context, lines []CartLine, couponCode *string) (*Result, error)
}

type service struct {
	catalogRepo catalog.Repository
	couponRepo  coupons.Repository
	now         func() time.Time
}

// NewService builds the pricing service.
func NewService(catalogRepo catalog.Repository, couponRepo coupons.Repository) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{
		catalogRepo: catalogRepo,
		couponRepo:  couponRepo,
		now:         time.Now,
	}, nil
}

// WithTx rebinds the service to a transaction so an order commit can
// re-price against the rows it is about to mutate.
func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{
		catalogRepo: s.catalogRepo.WithTx(tx),
		couponRepo:  s.couponRepo.WithTx(tx),
		now:         s.now,
	}
}

func (s *service) Quote(ctx context.Context, lines []CartLine, couponCode *string) (*Result, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required").
			WithReason(pkgerrors.ReasonEmptyOrder)
	}
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive").
				WithReason(pkgerrors.ReasonProductNotFound)
		}
		if line.Quantity <= 0 || line.Quantity > 999 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 999")
		}
	}

	products, err := s.fetchProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Lines:    make([]Line, 0, len(lines)),
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		product := products[line.ProductID]
		lineTotal := roundCurrency(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		subtotal = subtotal.Add(lineTotal)
		result.Lines = append(result.Lines, Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
	}
	// Subtotal is the sum of already-rounded line totals, so each line
	// audits cleanly against it.
	result.Subtotal = roundCurrency(subtotal)

	discount := decimal.Zero
	if couponCode != nil && strings.TrimSpace(*couponCode) != "" {
		coupon, err := s.couponRepo.FindByCode(ctx, *couponCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
					WithReason(pkgerrors.ReasonCouponNotFound)
			}
			return nil, fmt.Errorf("looking up coupon: %w", err)
		}

		discount, err = s.evaluateCoupon(coupon, result.Subtotal)
		if err != nil {
			return nil, err
		}

		result.Coupon = coupon
		result.CouponCode = &coupon.Code
	}

	result.Discount = discount

	base := result.Subtotal.Sub(discount)
	if base.IsNegative() {
		base = decimal.Zero
	}
	result.Total = roundCurrency(base.Add(result.Tax).Add(result.Shipping))

	return result, nil
}

func (s *service) fetchProducts(ctx context.Context, lines []CartLine) (map[int64]models.Product, error) {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.catalogRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	if len(products) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more products not found").
			WithReason(pkgerrors.ReasonProductNotFound)
	}

	out := make(map[int64]models.Product, len(products))
	for _, product := range products {
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is unavailable", product.Name)).
				WithReason(pkgerrors.ReasonProductInactive)
		}
		out[product.ID] = product
	}
	return out, nil
}

// evaluateCoupon applies the policy gates in a fixed order, short
// circuiting on the first failure, and returns the clamped discount.
func (s *service) evaluateCoupon(coupon *models.Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if !coupon.IsActive {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active").
			WithReason(pkgerrors.ReasonCouponInactive)
	}

	now := s.now().UTC()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not yet active").
			WithReason(pkgerrors.ReasonCouponNotStarted)
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired").
			WithReason(pkgerrors.ReasonCouponExpired)
	}

	if subtotal.LessThan(coupon.MinSubtotal) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "order does not meet the minimum subtotal for this coupon").
			WithReason(pkgerrors.ReasonCouponMinSubtotal)
	}

	if coupon.MaxRedemptions != nil && coupon.TimesRedeemed >= *coupon.MaxRedemptions {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon redemption limit reached").
			WithReason(pkgerrors.ReasonCouponExhausted)
	}

	if !coupon.DiscountValue.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon discount is invalid").
			WithReason(pkgerrors.ReasonCouponInvalid)
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.CouponDiscountPercentage:
		discount = roundCurrency(subtotal.Mul(coupon.DiscountValue).Div(hundred))
	default:
		discount = roundCurrency(coupon.DiscountValue)
	}

	// A coupon can never push the total below zero on its own.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, nil
}

// roundCurrency rounds to 2 decimal places, half away from zero.
func roundCurrency(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
