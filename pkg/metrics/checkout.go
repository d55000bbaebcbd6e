package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters and latencies for the checkout engine.
type CheckoutMetrics struct {
	ordersCreated   *prometheus.CounterVec
	pricingFailures *prometheus.CounterVec
	confirmations   *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Committed orders by payment method.",
	}, []string{"payment_method"})
	pricingFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_rejections_total",
		Help: "Pricing requests rejected by a business rule.",
	}, []string{"reason"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_confirmations_total",
		Help: "Payment confirmation attempts by outcome.",
	}, []string{"outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of outbound payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(ordersCreated, pricingFailures, confirmations, gatewayDuration)
	return &CheckoutMetrics{
		ordersCreated:   ordersCreated,
		pricingFailures: pricingFailures,
		confirmations:   confirmations,
		gatewayDuration: gatewayDuration,
	}
}

// IncOrderCreated increments the committed-order counter for the method.
func (c *CheckoutMetrics) IncOrderCreated(paymentMethod string) {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncPricingRejection increments the pricing rejection counter for the reason.
func (c *CheckoutMetrics) IncPricingRejection(reason string) {
	if c == nil || c.pricingFailures == nil {
		return
	}
	c.pricingFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncConfirmation increments the confirmation counter for the outcome.
func (c *CheckoutMetrics) IncConfirmation(outcome string) {
	if c == nil || c.confirmations == nil {
		return
	}
	c.confirmations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveGatewayDuration records the duration of a gateway operation.
func (c *CheckoutMetrics) ObserveGatewayDuration(operation string, duration time.Duration) {
	if c == nil || c.gatewayDuration == nil {
		return
	}
	c.gatewayDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
