package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avries/Asset-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/avries/Asset-Ledger-Backend/internal/api/middleware"
	"github.com/avries/Asset-Ledger-Backend/internal/config"
	"github.com/avries/Asset-Ledger-Backend/internal/ledger"
	"github.com/avries/Asset-Ledger-Backend/internal/repository"
	"github.com/avries/Asset-Ledger-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	l *ledger.PositionLedger,
	refreshService *service.RefreshService,
	systemService *service.SystemService,
	providerRepo *repository.ProviderConfigRepository,
	cfg *config.Config,
) http.Handler {
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
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/position", func(r chi.Router) {
			positionHandler := handlers.NewPositionHandler(l)
			r.Get("/", positionHandler.Positions)

			r.Route("/{asset}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAssetMiddleware)
				r.Get("/", positionHandler.Position)
				r.Delete("/", positionHandler.Delete)
				r.Post("/buy", positionHandler.Buy)
				r.Post("/sell", positionHandler.Sell)
				r.Post("/adjust", positionHandler.Adjust)
				r.Post("/price", positionHandler.RecordPrice)
				r.Get("/transactions", positionHandler.Transactions)
				r.Get("/prices", positionHandler.Prices)
			})
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(l)
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/distribution", portfolioHandler.Distribution)
		})

		r.Route("/refresh", func(r chi.Router) {
			refreshHandler := handlers.NewRefreshHandler(refreshService)
			r.Post("/", refreshHandler.Refresh)
			r.Post("/cancel", refreshHandler.Cancel)
		})

		r.Route("/provider", func(r chi.Router) {
			providerHandler := handlers.NewProviderHandler(providerRepo)
			r.Get("/config", providerHandler.Get)
			r.Put("/config", providerHandler.Put)
		})
	})

	return r
}
