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

	"github.com/robfig/cron/v3"

	"github.com/avries/Asset-Ledger-Backend/internal/api"
	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/config"
	"github.com/avries/Asset-Ledger-Backend/internal/database"
	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/quote"
	"github.com/avries/Asset-Ledger-Backend/internal/repository"
	"github.com/avries/Asset-Ledger-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	store := repository.NewLedgerStore(db)
	providerRepo, err := repository.NewProviderConfigRepository(db, cfg.Secrets.FernetKey)
	if err != nil {
		log.Fatalf("Failed to create provider config repository: %v", err)
	}

	// Create the ledger and services
	l, err := ledger.New(store)
	if err != nil {
		log.Fatalf("Failed to load ledger state: %v", err)
	}

	systemService := service.NewSystemService(db)
	provider := quote.NewRatesClient(providerRepo)
	refreshService := service.NewRefreshService(l, provider)

	// Create router
	router := api.NewRouter(l, refreshService, systemService, providerRepo, cfg)

	// Scheduled price refresh
	scheduler := cron.New()
	if cfg.Refresh.Enabled {
		_, err := scheduler.AddFunc(cfg.Refresh.Schedule, func() {
			result, err := refreshService.RefreshAll(context.Background())
			switch {
			case errors.Is(err, apperrors.ErrRefreshSuperseded):
				log.Println("Scheduled refresh superseded by a newer cycle")
			case err != nil:
				log.Printf("Scheduled refresh failed: %v", err)
			default:
				log.Printf("Scheduled refresh: %d updated, %d skipped",
					len(result.Updated), len(result.Skipped))
			}
		})
		if err != nil {
			log.Fatalf("Invalid refresh schedule %q: %v", cfg.Refresh.Schedule, err)
		}
		scheduler.Start()
		log.Printf("Price refresh scheduled: %s", cfg.Refresh.Schedule)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	refreshService.Cancel()
	<-scheduler.Stop().Done()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
