package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qudmeet/exchange-service/internal/api_gateway"
	"github.com/qudmeet/exchange-service/internal/api_gateway/service"
	"github.com/qudmeet/exchange-service/internal/config"
	"github.com/qudmeet/exchange-service/internal/data/mongo"
	"github.com/qudmeet/exchange-service/internal/data/postgres"
	"github.com/qudmeet/exchange-service/internal/logger"
	"github.com/qudmeet/exchange-service/internal/platform/blob"
	"github.com/qudmeet/exchange-service/internal/platform/persistence"
	"github.com/qudmeet/exchange-service/internal/receipt"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize artifact storage
	blobStore, err := blob.NewFileStore(log, &cfg.Blob)
	if err != nil {
		log.Error("Failed to initialize blob store", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	rateRepo := postgres.NewRateRepository(log, postgresDB)
	paymentAccountRepo := postgres.NewPaymentAccountRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	notificationRepo := mongo.NewNotificationRepository(log, mongoDB.Database())

	// Initialize services
	receiptGenerator := receipt.NewGenerator(log, blobStore)
	transactionService := service.NewTransactionService(log, transactionRepo, rateRepo, paymentAccountRepo, outboxRepo, postgresDB, blobStore, receiptGenerator)
	rateService := service.NewRateService(log, rateRepo, postgresDB)
	paymentAccountService := service.NewPaymentAccountService(log, paymentAccountRepo)
	notificationService := service.NewNotificationService(log, notificationRepo)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, transactionService, rateService, paymentAccountService, notificationService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
