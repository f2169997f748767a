package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/cart"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/checkout"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/config"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/es"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/events"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/handlers"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/logging"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/payments"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/repo"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
	httpserver "github.com/kuldeepsaindane/BiteBuddy-New/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	producer := events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	notifier := &events.OrderNotifier{Pub: producer, Log: logger}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	pricing := configuration.Pricing()
	carts := cart.NewManager(&cart.GormStore{DB: db}, pricing, logger)

	orders := &repo.GormOrders{DB: db}
	stripeProvider := payments.NewStripe(configuration.STRIPE_SECRET, configuration.STRIPE_WEBHOOK_SECRET, orders)
	checkoutSvc := checkout.NewService(carts, orders, orders, stripeProvider, notifier, logger)

	tokenSvc := &token.Service{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:                 db,
		AuthHandler:        &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Pub: producer},
		RestaurantHandler:  &handlers.RestaurantHandler{DB: db, Pub: producer},
		CartHandler:        &handlers.CartHandler{DB: db, Carts: carts, Pub: producer},
		OrderHandler:       &handlers.OrderHandler{DB: db, Checkout: checkoutSvc, Notify: notifier},
		PaymentHandler:     &handlers.PaymentHandler{DB: db, Stripe: stripeProvider, Checkout: checkoutSvc},
		ReservationHandler: &handlers.ReservationHandler{DB: db},
		RatingHandler:      &handlers.RatingHandler{DB: db},
		SupportHandler:     &handlers.SupportHandler{DB: db},
		CampaignHandler:    &handlers.CampaignHandler{DB: db},
		SearchHandler:      &handlers.SearchHandler{ES: esClient, Index: "restaurants"},
		TokenService:       tokenSvc,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
