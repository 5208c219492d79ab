package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lovmeds/internal/cart"
	"lovmeds/internal/domain"
)

const (
	cartCookie        = "cart_session"
	cartHeader        = "X-Cart-Session"
	orderNumberHeader = "X-Order-Number"

	cartStateKey = "cartState"
)

type cartResponse struct {
	SessionID string `json:"sessionId"`
	cart.View
}

// cartSessions resolves the shopper's cart from the X-Cart-Session header or
// the cart_session cookie.
type cartSessions struct {
	store CartSessions
	ttl   time.Duration
}

func sessionID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(cartHeader)); id != "" {
		return id
	}
	if id, err := c.Cookie(cartCookie); err == nil {
		return strings.TrimSpace(id)
	}
	return ""
}

// start returns the caller's live cart, or opens a new session.
func (s cartSessions) start(c *gin.Context) {
	if id := sessionID(c); id != "" {
		if state, err := s.store.Get(id); err == nil {
			s.issue(c, id)
			c.JSON(http.StatusOK, cartResponse{SessionID: id, View: state.View()})
			return
		}
	}
	id, state := s.store.Start()
	s.issue(c, id)
	c.JSON(http.StatusCreated, cartResponse{SessionID: id, View: state.View()})
}

func (s cartSessions) issue(c *gin.Context, id string) {
	maxAge := 0
	if s.ttl > 0 {
		maxAge = int(s.ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, id, maxAge, "/", "", c.Request.TLS != nil, true)
	c.Header(cartHeader, id)
}

// require aborts with 404 unless the request carries a live session.
func (s cartSessions) require(c *gin.Context) {
	id := sessionID(c)
	if id == "" {
		respondError(c, cart.ErrNoSession)
		return
	}
	state, err := s.store.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(cartStateKey, state)
	c.Next()
}

func currentCart(c *gin.Context) *cart.State {
	return c.MustGet(cartStateKey).(*cart.State)
}

func writeCart(c *gin.Context, state *cart.State) {
	c.JSON(http.StatusOK, cartResponse{SessionID: sessionID(c), View: state.View()})
}

func getCart(c *gin.Context) {
	writeCart(c, currentCart(c))
}

// addCartItem prices the line from the catalog; quantity defaults to 1.
func addCartItem(products ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "productId required")
			return
		}
		if req.Quantity < 0 {
			badRequest(c, "quantity must be positive")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		p, err := products.GetActive(c.Request.Context(), req.ProductID)
		if err != nil {
			respondError(c, err)
			return
		}
		state := currentCart(c)
		state.Add(cart.LineItem{
			ID:        p.ID,
			Title:     p.Title,
			ImageURL:  p.ImageURL,
			UnitPrice: p.EffectivePrice(),
		}, req.Quantity)
		writeCart(c, state)
	}
}

// setCartItemQuantity goes through the drawer, so values below 1 become 1.
func setCartItemQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	state := currentCart(c)
	if _, ok := state.Item(c.Param("id")); !ok {
		respondError(c, domain.ErrNotFound)
		return
	}
	cart.NewDrawer(state).SetQuantity(c.Param("id"), req.Quantity)
	writeCart(c, state)
}

func stepCartItem(step func(cart.Drawer, string) decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := currentCart(c)
		if _, ok := state.Item(c.Param("id")); !ok {
			respondError(c, domain.ErrNotFound)
			return
		}
		step(cart.NewDrawer(state), c.Param("id"))
		writeCart(c, state)
	}
}

func removeCartItem(c *gin.Context) {
	state := currentCart(c)
	cart.NewDrawer(state).Remove(c.Param("id"))
	writeCart(c, state)
}

func toggleCart(open bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := currentCart(c)
		if open {
			state.Open()
		} else {
			state.Close()
		}
		writeCart(c, state)
	}
}
