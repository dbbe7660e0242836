package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/api"
	"github.com/harvestlink/checkoutapi/internal/config"
	"github.com/harvestlink/checkoutapi/internal/proof"
	"github.com/harvestlink/checkoutapi/internal/service"
	"github.com/harvestlink/checkoutapi/internal/storebackend"
)

func main() {
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting checkout API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("store_backend", cfg.StoreBackend.BaseURL),
	)

	// Store backend client and services
	backend := storebackend.NewClient(cfg.StoreBackend, logger)
	proofStore := proof.NewStore(backend, cfg.ProofAttemptTTL, logger)

	// Sweep abandoned proof attempts so held image bytes get released
	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	go proofStore.RunEvictionLoop(evictCtx, time.Minute)
	submitter := service.NewSubmitter(backend, cfg.StoreBackend.ShipLeadDays, logger)
	locations := service.NewLocationService(backend, logger)

	// Initialize router
	router := api.NewRouter(cfg, submitter, locations, proofStore, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
