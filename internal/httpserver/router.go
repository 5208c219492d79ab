package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"lovmeds/internal/cart"
	"lovmeds/internal/checkout"
	"lovmeds/internal/domain"
	"lovmeds/internal/logging"
	"lovmeds/internal/metrics"
	ordersvc "lovmeds/internal/service/order"
)

type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, idOrSlug string) (*domain.Product, error)
	GetActive(ctx context.Context, idOrSlug string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Update(ctx context.Context, id string, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type PromoService interface {
	Current(ctx context.Context) (*domain.PromoMessage, error)
	Active(ctx context.Context) (*domain.PromoMessage, error)
	Save(ctx context.Context, p domain.PromoMessage) (*domain.PromoMessage, error)
}

type OrderService interface {
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Get(ctx context.Context, idOrNumber string) (*domain.Order, error)
	Update(ctx context.Context, id string, p ordersvc.Patch) (*domain.Order, error)
	Overview(ctx context.Context) (*domain.Overview, error)
}

type CheckoutService interface {
	Summary(sessionID string) (*checkout.Summary, error)
	Submit(ctx context.Context, sessionID string, form checkout.Form) (*checkout.Result, error)
}

// CartSessions is satisfied by *cart.Sessions.
type CartSessions interface {
	Start() (string, *cart.State)
	Get(id string) (*cart.State, error)
	End(id string)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	ProductSvc  ProductService
	CategorySvc CategoryService
	PromoSvc    PromoService
	OrderSvc    OrderService
	CheckoutSvc CheckoutService
	Carts       CartSessions
}

// Options carries the HTTP-facing settings from config.
type Options struct {
	AllowedOrigins []string
	// ShopPath is where shoppers are sent when there is nothing to check out.
	ShopPath string
	// CartSessionTTL bounds the cart cookie lifetime; zero means a browser
	// session cookie.
	CartSessionTTL time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *logrus.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	logger = logging.OrDiscard(logger)
	if opts.ShopPath == "" {
		opts.ShopPath = "/shop"
	}

	router := gin.New()
	router.Use(logging.RequestLogger(logger), gin.Recovery(), metrics.Middleware(), cors.New(corsConfig(opts.AllowedOrigins)))

	var ready pinger
	if db != nil {
		ready = db
	}
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(ready))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	api.GET("/products", listProducts(deps.ProductSvc, true))
	api.GET("/products/:idOrSlug", getProduct(deps.ProductSvc))
	api.GET("/categories", listCategories(deps.CategorySvc, true))
	api.GET("/categories/:slug/products", categoryProducts(deps.CategorySvc, deps.ProductSvc))
	api.GET("/promo", activePromo(deps.PromoSvc))

	sessions := cartSessions{store: deps.Carts, ttl: opts.CartSessionTTL}
	api.POST("/cart", sessions.start)
	cartRoutes := api.Group("/cart", sessions.require)
	cartRoutes.GET("", getCart)
	cartRoutes.POST("/items", addCartItem(deps.ProductSvc))
	cartRoutes.PATCH("/items/:id", setCartItemQuantity)
	cartRoutes.POST("/items/:id/increase", stepCartItem(cart.Drawer.Increase))
	cartRoutes.POST("/items/:id/decrease", stepCartItem(cart.Drawer.Decrease))
	cartRoutes.DELETE("/items/:id", removeCartItem)
	cartRoutes.POST("/open", toggleCart(true))
	cartRoutes.POST("/close", toggleCart(false))

	api.GET("/checkout", checkoutSummary(deps.CheckoutSvc, opts.ShopPath))
	api.POST("/checkout", submitCheckout(deps.CheckoutSvc, opts.ShopPath))

	admin := api.Group("/admin")
	admin.GET("/overview", overview(deps.OrderSvc))
	admin.GET("/products", listProducts(deps.ProductSvc, false))
	admin.POST("/products", createProduct(deps.ProductSvc))
	admin.GET("/products/:id", adminGetProduct(deps.ProductSvc))
	admin.PUT("/products/:id", updateProduct(deps.ProductSvc))
	admin.DELETE("/products/:id", deleteProduct(deps.ProductSvc))
	admin.GET("/categories", listCategories(deps.CategorySvc, false))
	admin.POST("/categories", createCategory(deps.CategorySvc))
	admin.PUT("/categories/:id", updateCategory(deps.CategorySvc))
	admin.DELETE("/categories/:id", deleteCategory(deps.CategorySvc))
	admin.GET("/orders", listOrders(deps.OrderSvc))
	admin.GET("/orders/:id", getOrder(deps.OrderSvc))
	admin.PATCH("/orders/:id", patchOrder(deps.OrderSvc))
	admin.GET("/promo", currentPromo(deps.PromoSvc))
	admin.PUT("/promo", savePromo(deps.PromoSvc))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", cartHeader},
		ExposeHeaders:    []string{orderNumberHeader, cartHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			cfg.AllowOrigins = nil
			return cfg
		}
		if o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
