package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qifin/lotledger/internal/api/handlers"
	custommiddleware "github.com/qifin/lotledger/internal/api/middleware"
	"github.com/qifin/lotledger/internal/config"
	"github.com/qifin/lotledger/internal/service"
)

// Services bundles the service dependencies of the router.
type Services struct {
	System      *service.SystemService
	Ledger      *service.LedgerService
	Snapshot    *service.SnapshotService
	Holdings    *service.HoldingsService
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Price       *service.PriceService
	Reference   *service.ReferenceService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/ledger", func(r chi.Router) {
			ledgerHandler := handlers.NewLedgerHandler(services.Ledger, services.Snapshot)
			r.Post("/rebuild", ledgerHandler.Rebuild)
		})

		r.Route("/holdings", func(r chi.Router) {
			holdingsHandler := handlers.NewHoldingsHandler(services.Holdings)
			r.Get("/", holdingsHandler.Holdings)
			r.Get("/account/{accountID}", holdingsHandler.HoldingsForAccount)
			r.Get("/security/{securityID}", holdingsHandler.HoldingsForSecurity)
			r.Get("/{accountID}/{securityID}", holdingsHandler.Holding)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(services.Portfolio)
			r.Get("/", portfolioHandler.Portfolios)
			r.Get("/{accountID}", portfolioHandler.Portfolio)
			r.Get("/{accountID}/history", portfolioHandler.PortfolioHistory)
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(services.Transaction)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Get("/", transactionHandler.Transactions)
			r.Get("/{transactionID}", transactionHandler.Transaction)
		})

		r.Route("/price", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(services.Price)
			r.Post("/", priceHandler.CreatePrice)
			r.Get("/{securityID}", priceHandler.Prices)
		})

		referenceHandler := handlers.NewReferenceHandler(services.Reference)
		r.Route("/account", func(r chi.Router) {
			r.Post("/", referenceHandler.CreateAccount)
			r.Get("/", referenceHandler.Accounts)
		})
		r.Route("/security", func(r chi.Router) {
			r.Post("/", referenceHandler.CreateSecurity)
			r.Get("/", referenceHandler.Securities)
		})
	})

	return r
}
