package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/qifin/lotledger/internal/api"
	"github.com/qifin/lotledger/internal/config"
	"github.com/qifin/lotledger/internal/database"
	"github.com/qifin/lotledger/internal/repository"
	"github.com/qifin/lotledger/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	lotRepo := repository.NewLotRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(db)
	holdingsService := service.NewHoldingsService(lotRepo)
	portfolioService := service.NewPortfolioService(
		transactionRepo,
		lotRepo,
		priceRepo,
		referenceRepo,
		snapshotRepo,
		holdingsService,
	)
	snapshotService := service.NewSnapshotService(
		transactionRepo,
		referenceRepo,
		snapshotRepo,
		portfolioService,
	)
	transactionService := service.NewTransactionService(transactionRepo, referenceRepo)
	priceService := service.NewPriceService(priceRepo, referenceRepo)
	referenceService := service.NewReferenceService(referenceRepo)

	// Nightly snapshot regeneration
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Snapshot.CronSpec, func() {
		if err := snapshotService.Regenerate(context.Background()); err != nil {
			log.Printf("Scheduled snapshot regeneration failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule snapshot regeneration: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Ledger:      ledgerService,
		Snapshot:    snapshotService,
		Holdings:    holdingsService,
		Portfolio:   portfolioService,
		Transaction: transactionService,
		Price:       priceService,
		Reference:   referenceService,
	}, cfg)

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

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
