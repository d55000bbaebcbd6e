package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	razorpaysdk "github.com/razorpay/razorpay-go"

	"github.com/adityaraut/dairydrop-backend/pkg/config"
	"github.com/adityaraut/dairydrop-backend/pkg/logger"
)

var (
	// ErrNotConfigured is returned when gateway credentials are absent.
	ErrNotConfigured = errors.New("razorpay credentials are not configured")
	// ErrGateway wraps any failure talking to the Razorpay API.
	ErrGateway = errors.New("razorpay request failed")
)

// Order is the gateway-side order created before client-side payment.
type Order struct {
	ID       string
	Currency string
	Receipt  string
}

// Payment is the gateway's authoritative record of a payment attempt.
type Payment struct {
	ID          string
	OrderID     string
	Status      string
	AmountPaise int64
}

// Captured reports whether the gateway considers the money collected.
// Razorpay reports "authorized" before auto-capture settles, so both
// count as collected for confirmation purposes.
func (p Payment) Captured() bool {
	return p.Status == "captured" || p.Status == "authorized"
}

// Client wraps the Razorpay SDK client plus the shared signing secret.
type Client struct {
	api       *razorpaysdk.Client
	keyID     string
	keySecret string
}

// NewClient initializes the Razorpay client with the configured credentials.
// A nil client is returned without error when credentials are absent so a
// cash-only deployment can boot; gateway calls then fail with ErrNotConfigured.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		if logg != nil {
			logg.Warn(ctx, "razorpay credentials absent, online payments disabled")
		}
		return nil, nil
	}

	api := razorpaysdk.NewClient(keyID, keySecret)

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		api:       api,
		keyID:     keyID,
		keySecret: keySecret,
	}, nil
}

// Configured reports whether the client can reach the gateway.
func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

// KeyID returns the publishable key identifier for browser-side checkout.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// CreateOrder registers an order with the gateway for the given integer
// minor-unit amount. Capture is requested automatically.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	if len(notes) > 0 {
		noteData := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			noteData[k] = v
		}
		data["notes"] = noteData
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrGateway, err)
	}

	order := &Order{
		ID:       stringField(body, "id"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: create order: response missing id", ErrGateway)
	}
	return order, nil
}

// FetchPayment looks up a payment directly from the gateway. Client-supplied
// payment state is never trusted; this is the authoritative read.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := c.api.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch payment %s: %v", ErrGateway, paymentID, err)
	}

	payment := &Payment{
		ID:          stringField(body, "id"),
		OrderID:     stringField(body, "order_id"),
		Status:      stringField(body, "status"),
		AmountPaise: intField(body, "amount"),
	}
	if payment.ID == "" {
		return nil, fmt.Errorf("%w: fetch payment %s: response missing id", ErrGateway, paymentID)
	}
	return payment, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay computes over
// "{orderID}|{paymentID}" with the shared secret. Comparison is constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if c == nil || c.keySecret == "" {
		return false
	}
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

// VerifySignature is the raw signature check, exported for tests and for
// callers that hold the secret without a full client.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func stringField(body map[string]interface{}, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func intField(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
