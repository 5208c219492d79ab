package notify

import (
	"fmt"
	"strings"

	"lovmeds/internal/domain"
)

// FormatOrderMessage builds the order summary the shopper sends to the shop
// over WhatsApp. It is pure and depends only on its arguments.
func FormatOrderMessage(orderNumber string, o domain.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🛒 *New Order - %s*\n\n", orderNumber)

	b.WriteString("*Customer Information:*\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "📧 Email: %s\n", o.Customer.Email)
	fmt.Fprintf(&b, "📱 Phone: %s\n\n", o.Customer.Phone)

	b.WriteString("*Shipping Address:*\n")
	fmt.Fprintf(&b, "📍 %s\n\n", strings.Join(o.ShippingAddress.Lines(), ", "))

	b.WriteString("*Order Items:*\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s x%d - %s\n", it.ProductName, it.Quantity, FormatCurrency(it.LineTotal()))
	}
	b.WriteString("\n")

	b.WriteString("*Order Summary:*\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", FormatCurrency(o.Subtotal))
	shipping := "Free"
	if !o.Shipping.IsZero() {
		shipping = FormatCurrency(o.Shipping)
	}
	fmt.Fprintf(&b, "Shipping: %s\n", shipping)
	fmt.Fprintf(&b, "*Total: %s*\n\n", FormatCurrency(o.Total))

	if notes := strings.TrimSpace(o.Notes); notes != "" {
		fmt.Fprintf(&b, "*Notes:*\n%s\n\n", notes)
	}

	b.WriteString("Please confirm this order. Thank you! 🙏")
	return b.String()
}
