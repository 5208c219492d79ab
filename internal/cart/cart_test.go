package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func item(id, price string) LineItem {
	return LineItem{ID: id, Title: id, UnitPrice: decimal.RequireFromString(price)}
}

func recompute(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

func TestAddSameIDAccumulatesQuantity(t *testing.T) {
	c := New()
	c.AddOne(item("face-oil", "15.50"))
	c.Add(item("face-oil", "15.50"), 3)
	c.AddOne(item("face-oil", "15.50"))

	items := c.Snapshot()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
	if !c.IsOpen() {
		t.Fatalf("expected drawer open after add")
	}
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	c := New()
	c.AddOne(item("b", "1"))
	c.AddOne(item("a", "1"))
	c.AddOne(item("b", "1"))

	items := c.Snapshot()
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestSubtotalMatchesRecomputation(t *testing.T) {
	c := New()
	steps := []func() decimal.Decimal{
		func() decimal.Decimal { return c.Add(item("face-oil", "15.50"), 2) },
		func() decimal.Decimal { return c.AddOne(item("serum", "89.99")) },
		func() decimal.Decimal { return c.UpdateQty("serum", 3) },
		func() decimal.Decimal { return c.Add(item("toner", "0.10"), 7) },
		func() decimal.Decimal { return c.Remove("face-oil") },
	}
	for i, step := range steps {
		got := step()
		want := recompute(c.Snapshot())
		if !got.Equal(want) {
			t.Fatalf("step %d: returned subtotal %s, recomputed %s", i, got, want)
		}
		if !c.Subtotal().Equal(want) {
			t.Fatalf("step %d: Subtotal() %s, recomputed %s", i, c.Subtotal(), want)
		}
	}
	if !c.Subtotal().Equal(decimal.RequireFromString("270.67")) {
		t.Fatalf("unexpected final subtotal %s", c.Subtotal())
	}
}

func TestRemoveLastLineClosesDrawer(t *testing.T) {
	c := New()
	c.AddOne(item("a", "1"))
	c.AddOne(item("b", "1"))

	c.Remove("a")
	if !c.IsOpen() {
		t.Fatalf("removing a non-last line must not close the drawer")
	}

	c.Remove("b")
	if c.IsOpen() {
		t.Fatalf("removing the last line must close the drawer")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestRemoveNonLastLeavesClosedDrawerClosed(t *testing.T) {
	c := New()
	c.AddOne(item("a", "1"))
	c.AddOne(item("b", "1"))
	c.Close()

	c.Remove("a")
	if c.IsOpen() {
		t.Fatalf("remove must not reopen the drawer")
	}
}

func TestRemoveMissingIDIsNoop(t *testing.T) {
	c := New()
	c.AddOne(item("a", "2"))
	got := c.Remove("missing")
	if c.Len() != 1 || !got.Equal(decimal.NewFromInt(2)) || !c.IsOpen() {
		t.Fatalf("unexpected state after removing missing id")
	}
}

func TestUpdateQtyIsNotClampedByStore(t *testing.T) {
	c := New()
	c.AddOne(item("a", "2"))
	c.UpdateQty("a", 0)
	it, _ := c.Item("a")
	if it.Quantity != 0 {
		t.Fatalf("store must apply quantity verbatim, got %d", it.Quantity)
	}
}

func TestOpenCloseDoNotTouchItems(t *testing.T) {
	c := New()
	c.Add(item("a", "2"), 2)
	c.Close()
	c.Open()
	if c.Len() != 1 || c.TotalQuantity() != 2 {
		t.Fatalf("open/close changed items")
	}
}

func TestSnapshotIsDecoupled(t *testing.T) {
	c := New()
	c.Add(item("a", "2"), 2)
	snap := c.Snapshot()

	c.UpdateQty("a", 9)
	c.AddOne(item("b", "1"))

	if len(snap) != 1 || snap[0].Quantity != 2 {
		t.Fatalf("snapshot changed after mutation: %+v", snap)
	}
}

func TestResetEmptiesAndCloses(t *testing.T) {
	c := New()
	c.AddOne(item("a", "2"))
	c.Reset()
	v := c.View()
	if len(v.Items) != 0 || v.IsOpen || !v.Subtotal.IsZero() || v.TotalQuantity != 0 {
		t.Fatalf("unexpected view after reset %+v", v)
	}
}

func TestConcurrentAddsSameID(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AddOne(item("a", "1"))
		}()
	}
	wg.Wait()
	if c.Len() != 1 || c.TotalQuantity() != 50 {
		t.Fatalf("expected one line with qty 50, got len=%d qty=%d", c.Len(), c.TotalQuantity())
	}
}

func TestDrawerClampsToOne(t *testing.T) {
	c := New()
	c.Add(item("a", "3"), 2)
	d := NewDrawer(c)

	d.SetQuantity("a", 0)
	if it, _ := c.Item("a"); it.Quantity != 1 {
		t.Fatalf("expected clamp to 1 for zero, got %d", it.Quantity)
	}
	d.SetQuantity("a", -4)
	if it, _ := c.Item("a"); it.Quantity != 1 {
		t.Fatalf("expected clamp to 1 for negative, got %d", it.Quantity)
	}
	d.Decrease("a")
	if it, _ := c.Item("a"); it.Quantity != 1 {
		t.Fatalf("decrease below one must clamp, got %d", it.Quantity)
	}
	got := d.Increase("a")
	if it, _ := c.Item("a"); it.Quantity != 2 {
		t.Fatalf("expected 2 after increase, got %d", it.Quantity)
	}
	if !got.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unexpected subtotal %s", got)
	}
	d.SetQuantity("a", 5)
	if it, _ := c.Item("a"); it.Quantity != 5 {
		t.Fatalf("expected 5, got %d", it.Quantity)
	}
}

func TestDrawerIgnoresMissingLines(t *testing.T) {
	c := New()
	d := NewDrawer(c)
	d.Increase("missing")
	d.Decrease("missing")
	if c.Len() != 0 {
		t.Fatalf("drawer must not create lines")
	}
}

func TestSessionsLifecycle(t *testing.T) {
	s := NewSessions(0)
	id, c := s.Start()
	c.AddOne(item("a", "1"))

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != c {
		t.Fatalf("expected same cart instance")
	}

	s.End(id)
	if _, err := s.Get(id); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession after end, got %v", err)
	}
	if _, err := s.Get("never-started"); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSessionsExpireIdle(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Hour)
	s.now = func() time.Time { return now }

	idle, _ := s.Start()
	active, _ := s.Start()

	now = now.Add(45 * time.Minute)
	if _, err := s.Get(active); err != nil {
		t.Fatalf("active session: %v", err)
	}

	now = now.Add(30 * time.Minute)
	if _, err := s.Get(idle); err != ErrNoSession {
		t.Fatalf("expected idle session expired, got %v", err)
	}
	if _, err := s.Get(active); err != nil {
		t.Fatalf("recently used session expired: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one live session, got %d", s.Len())
	}
}

func TestRemoveMissingIDFromEmptyCartClosesDrawer(t *testing.T) {
	c := New()
	c.Open()
	c.Remove("missing")
	if c.IsOpen() {
		t.Fatalf("an empty cart must close the drawer")
	}
}

func TestConcurrentDrawerStepsAreNotLost(t *testing.T) {
	c := New()
	c.AddOne(item("a", "1"))
	d := NewDrawer(c)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); d.Increase("a") }()
		go func() { defer wg.Done(); d.Increase("a") }()
	}
	wg.Wait()
	if it, _ := c.Item("a"); it.Quantity != 201 {
		t.Fatalf("expected 201 after 200 increases, got %d", it.Quantity)
	}

	for i := 0; i < 300; i++ {
		wg.Add(1)
		go func() { defer wg.Done(); d.Decrease("a") }()
	}
	wg.Wait()
	if it, _ := c.Item("a"); it.Quantity != MinQuantity {
		t.Fatalf("decrease must stop at %d, got %d", MinQuantity, it.Quantity)
	}
}

func TestSessionsSweepIsThrottled(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	s := NewSessions(time.Hour)
	s.now = func() time.Time { return now }

	stale, _ := s.Start()

	now = start.Add(59 * time.Minute)
	s.Start()

	now = start.Add(61 * time.Minute)
	s.Start()
	if s.Len() != 3 {
		t.Fatalf("no sweep expected within the interval, got %d sessions", s.Len())
	}

	if _, err := s.Get(stale); err != ErrNoSession {
		t.Fatalf("expired session must be rejected between sweeps, got %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expired session should be dropped on lookup, got %d", s.Len())
	}
}
