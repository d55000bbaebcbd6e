package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	"github.com/adityaraut/dairydrop-backend/pkg/enums"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
	"github.com/adityaraut/dairydrop-backend/pkg/razorpay"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	txn     *models.PaymentTransaction
	created *models.PaymentTransaction
	updates map[string]any
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	txn.ID = 5
	s.created = txn
	return txn, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*models.PaymentTransaction, error) {
	return s.FindByIDForUpdate(ctx, id)
}

func (s *stubRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.PaymentTransaction, error) {
	if s.txn == nil || s.txn.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.txn, nil
}

func (s *stubRepo) Update(ctx context.Context, txn *models.PaymentTransaction, fields map[string]any) error {
	s.updates = fields
	return nil
}

type stubPricing struct {
	result *pricing.Result
	err    error
}

func (s *stubPricing) WithTx(tx *gorm.DB) pricing.Service { return s }

func (s *stubPricing) Quote(ctx context.Context, lines []pricing.CartLine, couponCode *string) (*pricing.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubGateway struct {
	configured  bool
	order       *razorpay.Order
	orderErr    error
	payment     *razorpay.Payment
	paymentErr  error
	signatureOK bool
	createCalls int
	fetchCalls  int
}

func (s *stubGateway) Configured() bool { return s.configured }

func (s *stubGateway) KeyID() string { return "rzp_test_key" }

func (s *stubGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*razorpay.Order, error) {
	s.createCalls++
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	return s.order, nil
}

func (s *stubGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	s.fetchCalls++
	if s.paymentErr != nil {
		return nil, s.paymentErr
	}
	return s.payment, nil
}

func (s *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return s.signatureOK
}

type paymentsFixture struct {
	svc     Service
	repo    *stubRepo
	gateway *stubGateway
}

func newPaymentsFixture(t *testing.T, quote *pricing.Result, gateway *stubGateway) *paymentsFixture {
	t.Helper()

	f := &paymentsFixture{
		repo:    &stubRepo{},
		gateway: gateway,
	}
	svc, err := NewService(
		stubTxRunner{},
		f.repo,
		&stubPricing{result: quote},
		gateway,
		nil,
		enums.CurrencyINR,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func quoteOf(total string) *pricing.Result {
	return &pricing.Result{
		Subtotal: decimal.RequireFromString(total),
		Total:    decimal.RequireFromString(total),
	}
}

func pendingTxn() *models.PaymentTransaction {
	gatewayOrderID := "order_R123456789"
	return &models.PaymentTransaction{
		ID:             5,
		UserID:         42,
		Gateway:        enums.PaymentGatewayRazorpay,
		Status:         enums.PaymentStatusPending,
		Amount:         decimal.RequireFromString("117.00"),
		AmountPaise:    11700,
		Currency:       enums.CurrencyINR,
		GatewayOrderID: &gatewayOrderID,
	}
}

func confirmInput() ConfirmInput {
	return ConfirmInput{
		TransactionID:    5,
		GatewayOrderID:   "order_R123456789",
		GatewayPaymentID: "pay_R987654321",
		GatewaySignature: "deadbeef00deadbeef",
	}
}

func capturedPayment() *razorpay.Payment {
	return &razorpay.Payment{
		ID:          "pay_R987654321",
		OrderID:     "order_R123456789",
		Status:      "captured",
		AmountPaise: 11700,
	}
}

func TestInitiate(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{
		configured: true,
		order:      &razorpay.Order{ID: "order_R123456789", Currency: "INR", Receipt: "txn_5"},
	}
	f := newPaymentsFixture(t, quoteOf("117.00"), gateway)

	initiated, err := f.svc.Initiate(context.Background(), 42, InitiateInput{
		Items: []pricing.CartLine{{ProductID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if initiated.TransactionID != 5 {
		t.Fatalf("expected transaction id 5, got %d", initiated.TransactionID)
	}
	if initiated.AmountPaise != 11700 {
		t.Fatalf("expected 11700 paise, got %d", initiated.AmountPaise)
	}
	if initiated.GatewayOrderID != "order_R123456789" {
		t.Fatalf("unexpected gateway order id %q", initiated.GatewayOrderID)
	}
	if initiated.KeyID != "rzp_test_key" {
		t.Fatalf("unexpected key id %q", initiated.KeyID)
	}

	if f.repo.created == nil || f.repo.created.Status != enums.PaymentStatusCreated {
		t.Fatalf("transaction must be persisted as created before the gateway call, got %+v", f.repo.created)
	}
	if got := f.repo.updates["status"]; got != enums.PaymentStatusPending {
		t.Fatalf("expected update to pending, got %v", f.repo.updates)
	}
	if got := f.repo.updates["gateway_order_id"]; got != "order_R123456789" {
		t.Fatalf("expected gateway order id persisted, got %v", f.repo.updates)
	}
}

func TestInitiateGatewayNotConfigured(t *testing.T) {
	t.Parallel()

	f := newPaymentsFixture(t, quoteOf("117.00"), &stubGateway{configured: false})

	_, err := f.svc.Initiate(context.Background(), 42, InitiateInput{
		Items: []pricing.CartLine{{ProductID: 1, Quantity: 2}},
	})
	assertReason(t, err, pkgerrors.ReasonGatewayUnconfigured)
	if f.repo.created != nil {
		t.Fatal("no transaction may be written when the gateway is down")
	}
}

func TestInitiateZeroTotal(t *testing.T) {
	t.Parallel()

	f := newPaymentsFixture(t, quoteOf("0.00"), &stubGateway{configured: true})

	_, err := f.svc.Initiate(context.Background(), 42, InitiateInput{
		Items: []pricing.CartLine{{ProductID: 1, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected rejection of a zero amount")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInitiateGatewayFailureKeepsCreatedRow(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{configured: true, orderErr: errors.New("connect timeout")}
	f := newPaymentsFixture(t, quoteOf("117.00"), gateway)

	_, err := f.svc.Initiate(context.Background(), 42, InitiateInput{
		Items: []pricing.CartLine{{ProductID: 1, Quantity: 2}},
	})
	assertReason(t, err, pkgerrors.ReasonGatewayUnavailable)

	if f.repo.created == nil || f.repo.created.Status != enums.PaymentStatusCreated {
		t.Fatal("the created row must survive a gateway failure")
	}
	if f.repo.updates != nil {
		t.Fatalf("no status update may happen after a gateway failure, got %v", f.repo.updates)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{configured: true, signatureOK: true, payment: capturedPayment()}
	f := newPaymentsFixture(t, nil, gateway)
	f.repo.txn = pendingTxn()

	confirmed, err := f.svc.Confirm(context.Background(), 42, confirmInput())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if confirmed.TransactionID != 5 {
		t.Fatalf("unexpected transaction id %d", confirmed.TransactionID)
	}
	if got := confirmed.Amount.StringFixed(2); got != "117.00" {
		t.Fatalf("expected amount 117.00, got %s", got)
	}
	if got := f.repo.updates["status"]; got != enums.PaymentStatusPaid {
		t.Fatalf("expected paid update, got %v", f.repo.updates)
	}
	if got := f.repo.updates["gateway_payment_id"]; got != "pay_R987654321" {
		t.Fatalf("expected payment id persisted, got %v", f.repo.updates)
	}
}

func TestConfirmIdempotentWhenAlreadyPaid(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{configured: true, signatureOK: false}
	f := newPaymentsFixture(t, nil, gateway)
	txn := pendingTxn()
	txn.Status = enums.PaymentStatusPaid
	f.repo.txn = txn

	confirmed, err := f.svc.Confirm(context.Background(), 42, confirmInput())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.TransactionID != 5 {
		t.Fatalf("unexpected transaction id %d", confirmed.TransactionID)
	}
	if gateway.fetchCalls != 0 {
		t.Fatal("an already paid transaction must not hit the gateway")
	}
	if f.repo.updates != nil {
		t.Fatalf("no update may happen on the idempotent path, got %v", f.repo.updates)
	}
}

func TestConfirmRefusesFinalizedTransaction(t *testing.T) {
	t.Parallel()

	for _, status := range []enums.PaymentStatus{enums.PaymentStatusCancelled, enums.PaymentStatusFailed} {
		status := status
		t.Run(status.String(), func(t *testing.T) {
			t.Parallel()

			gateway := &stubGateway{configured: true, signatureOK: true, payment: capturedPayment()}
			f := newPaymentsFixture(t, nil, gateway)
			txn := pendingTxn()
			txn.Status = status
			f.repo.txn = txn

			_, err := f.svc.Confirm(context.Background(), 42, confirmInput())
			if err == nil {
				t.Fatalf("a %s transaction must not confirm", status)
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
				t.Fatalf("expected state conflict, got %v", err)
			}
			if typed.Reason() != pkgerrors.ReasonTransactionFinalized {
				t.Fatalf("expected reason %q, got %q", pkgerrors.ReasonTransactionFinalized, typed.Reason())
			}
			if gateway.fetchCalls != 0 {
				t.Fatal("a finalized transaction must not hit the gateway")
			}
			if f.repo.updates != nil {
				t.Fatalf("the transaction must stay untouched, got %v", f.repo.updates)
			}
		})
	}
}

func TestConfirmRejections(t *testing.T) {
	t.Parallel()

	notCaptured := capturedPayment()
	notCaptured.Status = "failed"

	wrongOrder := capturedPayment()
	wrongOrder.OrderID = "order_other"

	wrongAmount := capturedPayment()
	wrongAmount.AmountPaise = 11699

	cases := []struct {
		name    string
		userID  int64
		mutate  func(*models.PaymentTransaction)
		gateway *stubGateway
		code    pkgerrors.Code
		reason  pkgerrors.Reason
	}{
		{
			name:    "unknown transaction",
			userID:  42,
			mutate:  func(txn *models.PaymentTransaction) { txn.ID = 6 },
			gateway: &stubGateway{configured: true, signatureOK: true, payment: capturedPayment()},
			code:    pkgerrors.CodeNotFound,
			reason:  pkgerrors.ReasonTransactionNotFound,
		},
		{
			name:    "foreign transaction",
			userID:  99,
			gateway: &stubGateway{configured: true, signatureOK: true, payment: capturedPayment()},
			code:    pkgerrors.CodeForbidden,
		},
		{
			name:    "order id mismatch",
			userID:  42,
			mutate:  func(txn *models.PaymentTransaction) { other := "order_other"; txn.GatewayOrderID = &other },
			gateway: &stubGateway{configured: true, signatureOK: true, payment: capturedPayment()},
			code:    pkgerrors.CodeValidation,
			reason:  pkgerrors.ReasonOrderMismatch,
		},
		{
			name:    "bad signature",
			userID:  42,
			gateway: &stubGateway{configured: true, signatureOK: false},
			code:    pkgerrors.CodeValidation,
			reason:  pkgerrors.ReasonSignatureMismatch,
		},
		{
			name:    "gateway unreachable",
			userID:  42,
			gateway: &stubGateway{configured: true, signatureOK: true, paymentErr: errors.New("connect timeout")},
			code:    pkgerrors.CodeGateway,
			reason:  pkgerrors.ReasonGatewayUnavailable,
		},
		{
			name:    "payment for another order",
			userID:  42,
			gateway: &stubGateway{configured: true, signatureOK: true, payment: wrongOrder},
			code:    pkgerrors.CodeValidation,
			reason:  pkgerrors.ReasonOrderMismatch,
		},
		{
			name:    "payment not captured",
			userID:  42,
			gateway: &stubGateway{configured: true, signatureOK: true, payment: notCaptured},
			code:    pkgerrors.CodeValidation,
			reason:  pkgerrors.ReasonPaymentNotCaptured,
		},
		{
			name:    "amount mismatch",
			userID:  42,
			gateway: &stubGateway{configured: true, signatureOK: true, payment: wrongAmount},
			code:    pkgerrors.CodeValidation,
			reason:  pkgerrors.ReasonAmountMismatch,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newPaymentsFixture(t, nil, tc.gateway)
			txn := pendingTxn()
			if tc.mutate != nil {
				tc.mutate(txn)
			}
			f.repo.txn = txn

			_, err := f.svc.Confirm(context.Background(), tc.userID, confirmInput())
			if err == nil {
				t.Fatal("expected rejection")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
			if tc.reason != "" && typed.Reason() != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, typed.Reason())
			}
			if f.repo.updates != nil {
				t.Fatalf("the transaction must stay untouched on rejection, got %v", f.repo.updates)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	f := newPaymentsFixture(t, nil, &stubGateway{configured: true})
	f.repo.txn = pendingTxn()

	reason := "changed my mind"
	cancelled, err := f.svc.Cancel(context.Background(), 42, CancelInput{TransactionID: 5, Reason: &reason})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if got := f.repo.updates["error_code"]; got != "user_cancelled" {
		t.Fatalf("expected user_cancelled marker, got %v", f.repo.updates)
	}
	if got := f.repo.updates["error_description"]; got != reason {
		t.Fatalf("expected caller reason persisted, got %v", f.repo.updates)
	}
}

func TestCancelIdempotentOnTerminalStates(t *testing.T) {
	t.Parallel()

	for _, status := range []enums.PaymentStatus{enums.PaymentStatusCancelled, enums.PaymentStatusFailed} {
		status := status
		t.Run(status.String(), func(t *testing.T) {
			t.Parallel()

			f := newPaymentsFixture(t, nil, &stubGateway{configured: true})
			txn := pendingTxn()
			txn.Status = status
			f.repo.txn = txn

			cancelled, err := f.svc.Cancel(context.Background(), 42, CancelInput{TransactionID: 5})
			if err != nil {
				t.Fatalf("cancel: %v", err)
			}
			if cancelled.Status != status.String() {
				t.Fatalf("expected %s, got %s", status, cancelled.Status)
			}
			if f.repo.updates != nil {
				t.Fatalf("terminal transactions must not be rewritten, got %v", f.repo.updates)
			}
		})
	}
}

func TestCancelConflicts(t *testing.T) {
	t.Parallel()

	linkedOrder := int64(77)

	cases := []struct {
		name   string
		mutate func(*models.PaymentTransaction)
		reason pkgerrors.Reason
	}{
		{
			name:   "captured payment",
			mutate: func(txn *models.PaymentTransaction) { txn.Status = enums.PaymentStatusPaid },
		},
		{
			name:   "linked to order",
			mutate: func(txn *models.PaymentTransaction) { txn.OrderID = &linkedOrder },
			reason: pkgerrors.ReasonPaymentLinked,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newPaymentsFixture(t, nil, &stubGateway{configured: true})
			txn := pendingTxn()
			tc.mutate(txn)
			f.repo.txn = txn

			_, err := f.svc.Cancel(context.Background(), 42, CancelInput{TransactionID: 5})
			if err == nil {
				t.Fatal("expected conflict")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeConflict {
				t.Fatalf("expected conflict code, got %v", err)
			}
			if tc.reason != "" && typed.Reason() != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, typed.Reason())
			}
		})
	}
}

func TestAmountToPaise(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount string
		paise  int64
	}{
		{"117.00", 11700},
		{"0.01", 1},
		{"65.555", 6556},
		{"0.00", 0},
	}
	for _, tc := range cases {
		tc := tc
		if got := amountToPaise(decimal.RequireFromString(tc.amount)); got != tc.paise {
			t.Fatalf("amountToPaise(%s) = %d, want %d", tc.amount, got, tc.paise)
		}
	}
}

func assertReason(t *testing.T, err error, want pkgerrors.Reason) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with reason %q", want)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Reason() != want {
		t.Fatalf("expected reason %q, got %q (%v)", want, typed.Reason(), err)
	}
}
