package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventtickets/config"
	"eventtickets/internal/clock"
	delivery "eventtickets/internal/delivery/http"
	"eventtickets/internal/delivery/http/controllers"
	"eventtickets/internal/delivery/http/middleware"
	"eventtickets/internal/repository/postgres"
	"eventtickets/internal/services"
	"eventtickets/migrations"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	eventRepo := postgres.NewEventRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	viewRepo := postgres.NewViewRepository(db)
	buyerRepo := postgres.NewBuyerRepository(db)

	eventSvc := services.NewEventService(eventRepo, ticketRepo, viewRepo, clk, logger, cfg.PurgeTicketsOnFinish, serviceTimeout)
	bookingSvc := services.NewBookingService(eventRepo, ticketRepo, buyerRepo, clk, logger, serviceTimeout)
	trackingSvc := services.NewTrackingService(eventRepo, viewRepo, buyerRepo, clk, logger, serviceTimeout)

	pricingCfg := services.DefaultPricingConfig()
	pricingCfg.Interval = cfg.PricingInterval
	pricingCfg.ViewMultiplier = cfg.PricingViewMultiplier
	pricing := services.NewPricingEngine(eventRepo, viewRepo, clk, logger, pricingCfg)
	pricing.Start()

	mux := delivery.NewRouter(
		controllers.NewEventController(logger, eventSvc),
		controllers.NewBookingController(logger, bookingSvc),
		controllers.NewTrackingController(logger, trackingSvc),
	)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port, "pricing_interval", cfg.PricingInterval.String())

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping")
	}

	// Let in-flight requests and the current pricing cycle finish before
	// closing the pool.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "err", err)
	}
	pricing.Stop()
	logger.Info("server stopped")
}
