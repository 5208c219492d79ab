package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lovmeds_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lovmeds_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// OrdersCreated counts orders persisted by checkout.
	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lovmeds_orders_created_total",
			Help: "Orders created through checkout",
		},
	)

	// CheckoutFailures counts rejected or failed checkout submissions by reason.
	CheckoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lovmeds_checkout_failures_total",
			Help: "Checkout submissions that did not create an order",
		},
		[]string{"reason"},
	)

	// OrderValue observes order totals in GHS.
	OrderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lovmeds_order_value_ghs",
			Help:    "Order totals in Ghanaian cedi",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500},
		},
	)

	// WebhookBreakerState is the order webhook circuit state (0=closed, 1=open, 2=half-open).
	WebhookBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lovmeds_order_webhook_breaker_state",
			Help: "Order webhook circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)

	// WebhookFailures counts order webhook deliveries that failed or were short-circuited.
	WebhookFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lovmeds_order_webhook_failures_total",
			Help: "Order webhook deliveries that failed",
		},
	)
)

// RegisterCartSessions exposes the live cart session count.
func RegisterCartSessions(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "lovmeds_cart_sessions",
			Help: "Live in-memory cart sessions",
		},
		func() float64 { return float64(count()) },
	)
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
