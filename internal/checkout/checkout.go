// Package checkout turns a session cart into a persisted order and the
// WhatsApp hand-off link that replaces a payment step.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lovmeds/internal/cart"
	"lovmeds/internal/domain"
	"lovmeds/internal/logging"
	"lovmeds/internal/metrics"
	"lovmeds/internal/notify"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmissionInProgress = errors.New("checkout already in progress")
	ErrUnknownProduct       = errors.New("cart contains a product that is no longer available")
	ErrInvalidQuantity      = errors.New("cart contains an invalid quantity")
	// ErrOrderNotPlaced is the generic failure shown to shoppers when the
	// order could not be stored.
	ErrOrderNotPlaced = errors.New("we could not place your order, please try again")
)

// Carts resolves a session id to its cart.
type Carts interface {
	Get(sessionID string) (*cart.State, error)
}

// Catalog resolves cart line ids (product id or slug) to live products.
type Catalog interface {
	Get(ctx context.Context, idOrSlug string) (*domain.Product, error)
}

type OrderCreator interface {
	Create(ctx context.Context, o domain.NewOrder) (*domain.Order, error)
}

type Notifier interface {
	OrderPlaced(ctx context.Context, order domain.Order, message string) error
}

type Config struct {
	WhatsAppPhone string
	// Reprice replaces client-held prices with the catalog's current
	// effective price at submission.
	Reprice bool
}

type Deps struct {
	Carts    Carts
	Catalog  Catalog
	Orders   OrderCreator
	Notifier Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
}

type Service struct {
	carts    Carts
	catalog  Catalog
	orders   OrderCreator
	notifier Notifier
	cfg      Config
	log      *logrus.Logger
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
	notifyWG sync.WaitGroup
}

func New(deps Deps, cfg Config) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		carts:    deps.Carts,
		catalog:  deps.Catalog,
		orders:   deps.Orders,
		notifier: deps.Notifier,
		cfg:      cfg,
		log:      logging.OrDiscard(deps.Logger),
		now:      now,
		inFlight: make(map[string]struct{}),
	}
}

// Summary is what the checkout page shows next to the form.
type Summary struct {
	Items         []cart.LineItem `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
}

// Result is a placed order plus the message and link handed to the shopper.
type Result struct {
	Order      domain.Order `json:"order"`
	Message    string       `json:"message"`
	HandoffURL string       `json:"handoffUrl"`
}

// Summary returns ErrEmptyCart when there is nothing to check out.
func (s *Service) Summary(sessionID string) (*Summary, error) {
	state, err := s.carts.Get(sessionID)
	if err != nil {
		return nil, err
	}
	items := state.Snapshot()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	sum := &Summary{Items: items, Shipping: shippingFee()}
	for _, it := range items {
		sum.Subtotal = sum.Subtotal.Add(it.LineTotal())
		sum.TotalQuantity += it.Quantity
	}
	sum.Total = sum.Subtotal.Add(sum.Shipping)
	return sum, nil
}

// Submit places one order from the session's cart. A second call for the
// same session while the first is running fails with
// ErrSubmissionInProgress. The cart is emptied only after the order is
// stored; on failure it is left intact so the shopper can retry.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form) (*Result, error) {
	state, err := s.carts.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		metrics.CheckoutFailures.WithLabelValues("invalid_form").Inc()
		return nil, err
	}
	if !s.acquire(sessionID) {
		metrics.CheckoutFailures.WithLabelValues("in_progress").Inc()
		return nil, ErrSubmissionInProgress
	}
	defer s.release(sessionID)

	snapshot := state.Snapshot()
	if len(snapshot) == 0 {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	items, subtotal, err := s.price(ctx, snapshot)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("pricing").Inc()
		return nil, err
	}
	shipping := shippingFee()

	order, err := s.orders.Create(ctx, domain.NewOrder{
		Customer:        form.customer(),
		ShippingAddress: form.shipping(),
		BillingAddress:  form.billing(),
		Items:           items,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           subtotal.Add(shipping),
		Notes:           strings.TrimSpace(form.Notes),
		PlacedAt:        s.now().UTC(),
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("persistence").Inc()
		s.log.WithError(err).WithField("session", sessionID).Error("checkout: order not stored")
		return nil, fmt.Errorf("%w: %w", ErrOrderNotPlaced, err)
	}

	message := notify.FormatOrderMessage(order.OrderNumber, *order)
	result := &Result{
		Order:      *order,
		Message:    message,
		HandoffURL: notify.WhatsAppLink(s.cfg.WhatsAppPhone, message),
	}

	metrics.OrdersCreated.Inc()
	metrics.OrderValue.Observe(order.Total.InexactFloat64())
	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"items":        len(order.Items),
		"total":        order.Total.StringFixed(2),
	}).Info("checkout: order placed")

	s.notify(ctx, *order, message)
	state.Reset()
	return result, nil
}

// Wait blocks until every pending webhook notification has finished.
func (s *Service) Wait() {
	s.notifyWG.Wait()
}

func (s *Service) notify(ctx context.Context, order domain.Order, message string) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		if err := s.notifier.OrderPlaced(ctx, order, message); err != nil {
			s.log.WithError(err).WithField("order_number", order.OrderNumber).Warn("checkout: order notification failed")
		}
	}()
}

// price freezes the snapshot into order items. With repricing on, every line
// must resolve to an active catalog product whose current price is used.
func (s *Service) price(ctx context.Context, lines []cart.LineItem) ([]domain.OrderItem, decimal.Decimal, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("%w: %q x%d", ErrInvalidQuantity, l.Title, l.Quantity)
		}
		item := domain.OrderItem{
			ProductName: l.Title,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		}
		if s.cfg.Reprice && s.catalog != nil {
			p, err := s.catalog.Get(ctx, l.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownProduct, l.Title)
				}
				return nil, decimal.Zero, err
			}
			if !p.IsActive {
				return nil, decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownProduct, l.Title)
			}
			id := p.ID
			item.ProductID = &id
			item.ProductName = p.Title
			item.Price = p.EffectivePrice()
		} else if _, err := uuid.Parse(l.ID); err == nil {
			id := l.ID
			item.ProductID = &id
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}
	return items, subtotal, nil
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}

// shippingFee is fixed at zero; delivery is arranged over WhatsApp.
func shippingFee() decimal.Decimal {
	return decimal.Zero
}
