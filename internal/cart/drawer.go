package cart

import "github.com/shopspring/decimal"

// MinQuantity is the lowest quantity the drawer will set on a line.
const MinQuantity = 1

// Drawer is the shopper-facing mutation layer over a cart. Unlike State it
// never lets a quantity drop below MinQuantity; removing a line is explicit.
type Drawer struct {
	cart *State
}

func NewDrawer(cart *State) Drawer {
	return Drawer{cart: cart}
}

func (d Drawer) SetQuantity(id string, qty int) decimal.Decimal {
	return d.cart.UpdateQty(id, clamp(qty))
}

func (d Drawer) Increase(id string) decimal.Decimal {
	return d.cart.Adjust(id, 1, MinQuantity)
}

func (d Drawer) Decrease(id string) decimal.Decimal {
	return d.cart.Adjust(id, -1, MinQuantity)
}

func (d Drawer) Remove(id string) decimal.Decimal {
	return d.cart.Remove(id)
}

func clamp(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	return qty
}
