package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"lovmeds/internal/domain"
	"lovmeds/internal/logging"
	"lovmeds/internal/metrics"
)

// OrderEvent is the JSON body posted to the order webhook.
type OrderEvent struct {
	Event       string       `json:"event"`
	OrderNumber string       `json:"orderNumber"`
	Order       domain.Order `json:"order"`
	Message     string       `json:"message"`
	SentAt      time.Time    `json:"sentAt"`
}

// Webhook posts placed orders to an operator-configured URL. Deliveries go
// through a circuit breaker so a dead endpoint does not slow checkout down.
type Webhook struct {
	url     string
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

func NewWebhook(url string, timeout time.Duration, logger *logrus.Logger) *Webhook {
	logger = logging.OrDiscard(logger)
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "order-webhook",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.WebhookBreakerState.Set(breakerStateValue(to))
			logger.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("order webhook circuit state changed")
		},
	})
	return &Webhook{
		url: url,
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
		breaker: breaker,
		log:     logger,
	}
}

// OrderPlaced delivers one order event. Errors are returned for the caller to
// log; they never affect the order itself.
func (w *Webhook) OrderPlaced(ctx context.Context, order domain.Order, message string) error {
	event := OrderEvent{
		Event:       "order.placed",
		OrderNumber: order.OrderNumber,
		Order:       order,
		Message:     message,
		SentAt:      time.Now().UTC(),
	}
	_, err := w.breaker.Execute(func() (interface{}, error) {
		resp, err := w.client.R().SetContext(ctx).SetBody(event).Post(w.url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("webhook responded %s", resp.Status())
		}
		return nil, nil
	})
	if err != nil {
		metrics.WebhookFailures.Inc()
		return fmt.Errorf("order webhook %s: %w", order.OrderNumber, err)
	}
	w.log.WithField("order_number", order.OrderNumber).Debug("order webhook delivered")
	return nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
