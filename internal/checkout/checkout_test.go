package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lovmeds/internal/cart"
	"lovmeds/internal/domain"
	"lovmeds/internal/ordernumber"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type stubCatalog struct {
	products map[string]*domain.Product
	err      error
}

func (s *stubCatalog) Get(_ context.Context, idOrSlug string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.products[idOrSlug]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// stubOrders numbers orders per UTC day the way the database counter does.
type stubOrders struct {
	mu      sync.Mutex
	perDay  map[string]int
	created []domain.NewOrder
	failN   int
	entered chan struct{}
	release chan struct{}
}

func newStubOrders() *stubOrders {
	return &stubOrders{perDay: map[string]int{}}
}

func (s *stubOrders) Create(_ context.Context, o domain.NewOrder) (*domain.Order, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failN > 0 {
		s.failN--
		return nil, errors.New("connection reset")
	}
	day := ordernumber.Day(o.PlacedAt).Format("2006-01-02")
	number := ordernumber.Next(o.PlacedAt, s.perDay[day])
	s.perDay[day]++
	s.created = append(s.created, o)
	return &domain.Order{
		ID:              "order-" + number,
		OrderNumber:     number,
		Customer:        o.Customer,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Items:           o.Items,
		Subtotal:        o.Subtotal,
		Shipping:        o.Shipping,
		Total:           o.Total,
		Status:          domain.StatusPending,
		Notes:           o.Notes,
		CreatedAt:       o.PlacedAt,
	}, nil
}

func (s *stubOrders) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type stubNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (s *stubNotifier) OrderPlaced(_ context.Context, o domain.Order, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o.OrderNumber)
	return s.err
}

func validForm() Form {
	return Form{
		CustomerName:  "Ama Mensah",
		CustomerEmail: "ama@example.com",
		CustomerPhone: "0241234567",
		Street:        "12 Oxford Street",
		City:          "Accra",
		Region:        "Greater Accra",
	}
}

func faceOil() *domain.Product {
	return &domain.Product{ID: "p-face-oil", Slug: "face-oil", Title: "Face Oil", NormalPrice: money("15.50"), IsActive: true}
}

type fixture struct {
	sessions *cart.Sessions
	orders   *stubOrders
	catalog  *stubCatalog
	notifier *stubNotifier
	svc      *Service
	clock    time.Time
}

func newFixture(reprice bool) *fixture {
	f := &fixture{
		sessions: cart.NewSessions(0),
		orders:   newStubOrders(),
		catalog:  &stubCatalog{products: map[string]*domain.Product{"face-oil": faceOil()}},
		notifier: &stubNotifier{},
		clock:    time.Date(2025, 6, 9, 14, 30, 0, 0, time.UTC),
	}
	f.svc = New(Deps{
		Carts:    f.sessions,
		Catalog:  f.catalog,
		Orders:   f.orders,
		Notifier: f.notifier,
		Now:      func() time.Time { return f.clock },
	}, Config{WhatsAppPhone: "+233 24 000 0000", Reprice: reprice})
	return f
}

func TestSubmit_FaceOilEndToEnd(t *testing.T) {
	f := newFixture(true)
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")}, 2)

	res, err := f.svc.Submit(context.Background(), id, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.svc.Wait()

	if !res.Order.Subtotal.Equal(money("31")) || !res.Order.Total.Equal(money("31")) {
		t.Fatalf("unexpected totals %s / %s", res.Order.Subtotal, res.Order.Total)
	}
	if res.Order.OrderNumber != "ORD-20250609-0001" {
		t.Fatalf("unexpected order number %s", res.Order.OrderNumber)
	}
	for _, want := range []string{"Face Oil x2 - GH₵31.00", "GH₵31.00*", "Shipping: Free"} {
		if !strings.Contains(res.Message, want) {
			t.Fatalf("message missing %q:\n%s", want, res.Message)
		}
	}

	u, err := url.Parse(res.HandoffURL)
	if err != nil {
		t.Fatalf("parse hand-off url: %v", err)
	}
	if u.Host != "wa.me" || u.Path != "/233240000000" || u.Query().Get("text") != res.Message {
		t.Fatalf("unexpected hand-off url %s", res.HandoffURL)
	}

	if state.Len() != 0 || state.IsOpen() {
		t.Fatalf("cart must be reset after a placed order")
	}
	stored := f.orders.created[0]
	if stored.BillingAddress != stored.ShippingAddress {
		t.Fatalf("billing should default to shipping: %+v", stored.BillingAddress)
	}
	if stored.Items[0].ProductID == nil || *stored.Items[0].ProductID != "p-face-oil" {
		t.Fatalf("repriced item should reference the catalog product: %+v", stored.Items[0])
	}
	if len(f.notifier.orders) != 1 || f.notifier.orders[0] != "ORD-20250609-0001" {
		t.Fatalf("notifier not called: %v", f.notifier.orders)
	}
}

func TestSubmit_SnapshotIsFrozen(t *testing.T) {
	f := newFixture(false)
	f.orders.entered = make(chan struct{})
	f.orders.release = make(chan struct{})
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")}, 2)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), id, validForm())
		done <- err
	}()
	<-f.orders.entered
	state.Add(cart.LineItem{ID: "shea", Title: "Shea Butter", UnitPrice: money("20")}, 5)
	close(f.orders.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}

	stored := f.orders.created[0]
	if len(stored.Items) != 1 || !stored.Total.Equal(money("31")) {
		t.Fatalf("in-flight order picked up later cart changes: %+v", stored)
	}
}

func TestSummary_EmptyCart(t *testing.T) {
	f := newFixture(true)
	id, _ := f.sessions.Start()
	if _, err := f.svc.Summary(id); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), id, validForm()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.orders.count() != 0 {
		t.Fatalf("no order may be created from an empty cart")
	}
}

func TestSummary_Totals(t *testing.T) {
	f := newFixture(true)
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "a", Title: "A", UnitPrice: money("15.50")}, 2)
	state.Add(cart.LineItem{ID: "b", Title: "B", UnitPrice: money("4.25")}, 1)

	sum, err := f.svc.Summary(id)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Subtotal.Equal(money("35.25")) || !sum.Total.Equal(money("35.25")) || !sum.Shipping.IsZero() || sum.TotalQuantity != 3 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSubmit_UnknownSession(t *testing.T) {
	f := newFixture(true)
	if _, err := f.svc.Submit(context.Background(), "missing", validForm()); !errors.Is(err, cart.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSubmit_RepricesAgainstCatalog(t *testing.T) {
	f := newFixture(true)
	sale := money("12.00")
	f.catalog.products["face-oil"].SalePrice = &sale

	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("99.99")}, 2)

	res, err := f.svc.Submit(context.Background(), id, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Order.Items[0].Price.Equal(sale) || !res.Order.Total.Equal(money("24")) {
		t.Fatalf("client price was trusted: %+v", res.Order)
	}
}

func TestSubmit_TrustsClientPriceWhenRepricingDisabled(t *testing.T) {
	f := newFixture(false)
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "not-in-catalog", Title: "Gift Card", UnitPrice: money("50")}, 1)

	res, err := f.svc.Submit(context.Background(), id, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Order.Total.Equal(money("50")) || res.Order.Items[0].ProductID != nil {
		t.Fatalf("unexpected order %+v", res.Order)
	}
}

func TestSubmit_RejectsUnknownOrInactiveProducts(t *testing.T) {
	f := newFixture(true)
	f.catalog.products["retired"] = &domain.Product{ID: "p-retired", Title: "Retired", NormalPrice: money("5")}

	for _, lineID := range []string{"ghost", "retired"} {
		id, state := f.sessions.Start()
		state.Add(cart.LineItem{ID: lineID, Title: lineID, UnitPrice: money("5")}, 1)
		if _, err := f.svc.Submit(context.Background(), id, validForm()); !errors.Is(err, ErrUnknownProduct) {
			t.Fatalf("%s: expected ErrUnknownProduct, got %v", lineID, err)
		}
		if state.Len() != 1 {
			t.Fatalf("%s: rejected checkout must leave the cart alone", lineID)
		}
	}
	if f.orders.count() != 0 {
		t.Fatalf("no order expected")
	}
}

func TestSubmit_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(false)
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")}, 1)
	state.UpdateQty("face-oil", 0)

	if _, err := f.svc.Submit(context.Background(), id, validForm()); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSubmit_InvalidForm(t *testing.T) {
	f := newFixture(true)
	id, state := f.sessions.Start()
	state.AddOne(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")})

	form := validForm()
	form.CustomerEmail = " "
	form.City = ""
	_, err := f.svc.Submit(context.Background(), id, form)
	var fe *FormError
	if !errors.As(err, &fe) || !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected FormError, got %v", err)
	}
	if strings.Join(fe.Missing, ",") != "customerEmail,city" {
		t.Fatalf("unexpected missing fields %v", fe.Missing)
	}
}

func TestSubmit_RetryAfterPersistenceFailure(t *testing.T) {
	f := newFixture(true)
	f.orders.failN = 1
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")}, 2)

	_, err := f.svc.Submit(context.Background(), id, validForm())
	if !errors.Is(err, ErrOrderNotPlaced) {
		t.Fatalf("expected ErrOrderNotPlaced, got %v", err)
	}
	if state.Len() != 1 {
		t.Fatalf("cart must survive a failed submission")
	}

	res, err := f.svc.Submit(context.Background(), id, validForm())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Order.OrderNumber != "ORD-20250609-0001" {
		t.Fatalf("unexpected order number %s", res.Order.OrderNumber)
	}
}

func TestSubmit_SingleFlightPerSession(t *testing.T) {
	f := newFixture(true)
	f.orders.entered = make(chan struct{})
	f.orders.release = make(chan struct{})
	id, state := f.sessions.Start()
	state.Add(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")}, 2)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), id, validForm())
		done <- err
	}()
	<-f.orders.entered

	if _, err := f.svc.Submit(context.Background(), id, validForm()); !errors.Is(err, ErrSubmissionInProgress) {
		t.Fatalf("expected ErrSubmissionInProgress, got %v", err)
	}

	close(f.orders.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if f.orders.count() != 1 {
		t.Fatalf("expected exactly one order, got %d", f.orders.count())
	}
}

func TestSubmit_MidnightRollover(t *testing.T) {
	f := newFixture(false)
	place := func(at time.Time) string {
		f.clock = at
		id, state := f.sessions.Start()
		state.AddOne(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")})
		res, err := f.svc.Submit(context.Background(), id, validForm())
		if err != nil {
			t.Fatalf("submit at %s: %v", at, err)
		}
		return res.Order.OrderNumber
	}

	place(time.Date(2025, 6, 9, 23, 58, 0, 0, time.UTC))
	if got := place(time.Date(2025, 6, 9, 23, 59, 59, 0, time.UTC)); got != "ORD-20250609-0002" {
		t.Fatalf("unexpected number before midnight %s", got)
	}
	if got := place(time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)); got != "ORD-20250610-0001" {
		t.Fatalf("unexpected number after midnight %s", got)
	}
	accra := time.FixedZone("GMT+1", 3600)
	if got := place(time.Date(2025, 6, 11, 0, 30, 0, 0, accra)); got != "ORD-20250610-0002" {
		t.Fatalf("day must be taken in UTC, got %s", got)
	}
}

func TestSubmit_NotifierFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(true)
	f.notifier.err = errors.New("webhook down")
	id, state := f.sessions.Start()
	state.AddOne(cart.LineItem{ID: "face-oil", Title: "Face Oil", UnitPrice: money("15.50")})

	if _, err := f.svc.Submit(context.Background(), id, validForm()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.svc.Wait()
	if len(f.notifier.orders) != 1 {
		t.Fatalf("expected one notification attempt")
	}
}

func TestFormValidate_Billing(t *testing.T) {
	form := validForm()
	form.Billing = &domain.Address{Street: "PO Box 1", City: "Kumasi"}
	var fe *FormError
	if err := form.Validate(); !errors.As(err, &fe) || len(fe.Missing) != 1 || fe.Missing[0] != "billingAddress.region" {
		t.Fatalf("unexpected validation result %v", err)
	}
	form.Billing.Region = "Ashanti"
	if err := form.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if form.billing().City != "Kumasi" {
		t.Fatalf("explicit billing address ignored")
	}
}
