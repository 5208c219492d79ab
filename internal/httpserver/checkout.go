package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lovmeds/internal/cart"
	"lovmeds/internal/checkout"
)

// checkoutSummary sends shoppers with nothing to buy back to the shop.
func checkoutSummary(svc CheckoutService, shopPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svc.Summary(sessionID(c))
		if err != nil {
			if nothingToCheckOut(err) {
				c.Redirect(http.StatusSeeOther, shopPath)
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// submitCheckout places the order and redirects to the WhatsApp hand-off
// link. Clients that accept JSON get the order and link in the body instead.
func submitCheckout(svc CheckoutService, shopPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		jsonClient := wantsJSON(c)

		var form checkout.Form
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, "invalid checkout form")
			return
		}

		res, err := svc.Submit(c.Request.Context(), sessionID(c), form)
		if err != nil {
			if !jsonClient && nothingToCheckOut(err) {
				c.Redirect(http.StatusSeeOther, shopPath)
				return
			}
			respondError(c, err)
			return
		}

		c.Header(orderNumberHeader, res.Order.OrderNumber)
		if jsonClient {
			c.JSON(http.StatusCreated, res)
			return
		}
		c.Redirect(http.StatusSeeOther, res.HandoffURL)
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

func nothingToCheckOut(err error) bool {
	return errors.Is(err, checkout.ErrEmptyCart) || errors.Is(err, cart.ErrNoSession)
}
