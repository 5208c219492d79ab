// Package cart holds a shopper's in-progress selection. Carts live only in
// process memory; nothing here is persisted.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// LineItem is one product row in a cart. ID is the product id, or a slug when
// the storefront has no stable id for the product.
type LineItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is UnitPrice × Quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is a single shopper's cart. Items keep insertion order, and at most
// one line exists per ID. The zero value is not usable; call New.
type State struct {
	mu     sync.RWMutex
	items  []LineItem
	isOpen bool
}

func New() *State {
	return &State{}
}

// Add appends item with quantity qty, or increments the existing line with
// the same ID by qty. The drawer is opened on every add. qty is not
// validated here.
func (s *State) Add(item LineItem, qty int) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(item.ID); idx >= 0 {
		s.items[idx].Quantity += qty
	} else {
		item.Quantity = qty
		s.items = append(s.items, item)
	}
	s.isOpen = true
	return s.subtotalLocked()
}

// AddOne adds a single unit of item.
func (s *State) AddOne(item LineItem) decimal.Decimal {
	return s.Add(item, 1)
}

// Remove drops the line with id. The drawer closes whenever the cart is left
// empty, even if id was not present.
func (s *State) Remove(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(id); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	if len(s.items) == 0 {
		s.isOpen = false
	}
	return s.subtotalLocked()
}

// UpdateQty replaces the quantity of the line with id. Clamping is the
// caller's job (see Drawer).
func (s *State) UpdateQty(id string, qty int) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(id); idx >= 0 {
		s.items[idx].Quantity = qty
	}
	return s.subtotalLocked()
}

// Adjust changes the quantity of the line with id by delta in one step,
// never going below floor. A missing id is ignored.
func (s *State) Adjust(id string, delta, floor int) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(id); idx >= 0 {
		s.items[idx].Quantity = max(s.items[idx].Quantity+delta, floor)
	}
	return s.subtotalLocked()
}

// Subtotal is recomputed from the items on every call.
func (s *State) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotalLocked()
}

func (s *State) Open() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

func (s *State) Close() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

func (s *State) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOpen
}

// Len is the number of distinct lines.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalQuantity sums quantities across lines.
func (s *State) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Item returns a copy of the line with id.
func (s *State) Item(id string) (LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx], true
	}
	return LineItem{}, false
}

// Snapshot returns a copy of the items; later cart mutations do not affect it.
func (s *State) Snapshot() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Reset empties the cart and closes the drawer.
func (s *State) Reset() {
	s.mu.Lock()
	s.items = nil
	s.isOpen = false
	s.mu.Unlock()
}

// View is a consistent read of the whole cart.
type View struct {
	Items         []LineItem      `json:"items"`
	IsOpen        bool            `json:"isOpen"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalQuantity int             `json:"totalQuantity"`
}

func (s *State) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	qty := 0
	for _, it := range items {
		qty += it.Quantity
	}
	return View{Items: items, IsOpen: s.isOpen, Subtotal: s.subtotalLocked(), TotalQuantity: qty}
}

func (s *State) indexOf(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) subtotalLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
