package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "cyclerent-backend/internal/api/http"
	"cyclerent-backend/internal/clock"
	"cyclerent-backend/internal/config"
	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/payment"
	"cyclerent-backend/internal/repository/postgres"
	"cyclerent-backend/internal/security"
	"cyclerent-backend/internal/service"
	"cyclerent-backend/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting CycleRent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	clk := clock.New()
	codeGen := utils.NewBookingCodeGenerator(cfg.Booking.CodeSecret)
	emailSvc := service.NewEmailService(cfg.Email)
	couponSvc := service.NewCouponService(store.CouponRepository, clk)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.InventoryRepository,
		store.CouponRepository,
		store.UserRepository,
		couponSvc,
		emailSvc,
		store.NotificationRepository,
		codeGen,
		cfg.Policy,
		clk,
	)
	cancellationSvc := service.NewCancellationService(
		store.BookingRepository,
		store.InventoryRepository,
		store.UserRepository,
		emailSvc,
		store.NotificationRepository,
		cfg.Policy,
		clk,
	)
	settlementSvc := service.NewSettlementService(
		store.BookingRepository,
		store.InventoryRepository,
		store.DamageReportRepository,
		store.UserRepository,
		emailSvc,
		store.NotificationRepository,
		cfg.Policy,
		clk,
	)
	inventorySvc := service.NewInventoryService(store.InventoryRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	gateway := payment.NewMidtransGateway(cfg.Payment)

	// Initialize HTTP handlers
	bookingHandler := httpapi.NewBookingHandler(bookingSvc, cancellationSvc, settlementSvc)
	adminHandler := httpapi.NewAdminHandler(inventorySvc, couponSvc, store.PartnerRepository)
	paymentHandler := httpapi.NewPaymentHandler(gateway, bookingSvc)
	notificationHandler := httpapi.NewNotificationHandler(noteSvc)

	router := httpapi.NewRouter(tokenManager, bookingHandler, adminHandler, paymentHandler, notificationHandler)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
