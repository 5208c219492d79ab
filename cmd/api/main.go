package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"lovmeds/internal/cart"
	"lovmeds/internal/checkout"
	"lovmeds/internal/config"
	"lovmeds/internal/db"
	"lovmeds/internal/httpserver"
	"lovmeds/internal/logging"
	"lovmeds/internal/metrics"
	"lovmeds/internal/notify"
	categoryrepo "lovmeds/internal/repository/category"
	orderrepo "lovmeds/internal/repository/order"
	productrepo "lovmeds/internal/repository/product"
	promorepo "lovmeds/internal/repository/promo"
	categorysvc "lovmeds/internal/service/category"
	ordersvc "lovmeds/internal/service/order"
	productsvc "lovmeds/internal/service/product"
	promosvc "lovmeds/internal/service/promo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.WhatsAppPhone == config.PlaceholderWhatsAppPhone {
		logger.Warn("WHATSAPP_PHONE not set, hand-off links use the placeholder number")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns, Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	promoService := promosvc.New(promorepo.NewPostgres(dbpool))
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	orderService := ordersvc.New(orderRepo)

	sessions := cart.NewSessions(cfg.CartSessionTTL)
	metrics.RegisterCartSessions(sessions.Len)

	deps := checkout.Deps{
		Carts:   sessions,
		Catalog: productService,
		Orders:  orderRepo,
		Logger:  logger,
	}
	if cfg.OrderWebhookURL != "" {
		deps.Notifier = notify.NewWebhook(cfg.OrderWebhookURL, cfg.OrderWebhookTimeout, logger)
		logger.WithField("url", cfg.OrderWebhookURL).Info("order webhook enabled")
	}
	checkoutService := checkout.New(deps, checkout.Config{
		WhatsAppPhone: cfg.WhatsAppPhone,
		Reprice:       cfg.CheckoutReprice,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CategorySvc: categoryService,
		PromoSvc:    promoService,
		OrderSvc:    orderService,
		CheckoutSvc: checkoutService,
		Carts:       sessions,
	}, httpserver.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ShopPath:       cfg.ShopPath,
		CartSessionTTL: cfg.CartSessionTTL,
	})
	if err != nil {
		logger.WithError(err).Fatal("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErr:
		logger.WithError(err).Error("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	} else {
		logger.Info("server stopped")
	}
	checkoutService.Wait()
}
