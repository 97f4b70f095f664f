package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sheetpos/internal/config"
	"sheetpos/internal/keylock"
	"sheetpos/internal/modules/analytics"
	"sheetpos/internal/modules/auth"
	"sheetpos/internal/modules/cart"
	"sheetpos/internal/modules/catalog"
	"sheetpos/internal/modules/inventory"
	"sheetpos/internal/modules/invoice"
	"sheetpos/internal/modules/order"
	"sheetpos/internal/session"
	"sheetpos/internal/sheetstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// ── Remote store ────────────────────────────────────────
	var store sheetstore.RowStore
	if cfg.CredentialsFile != "" && cfg.SpreadsheetID != "" {
		store, err = sheetstore.NewGoogleStore(ctx, cfg.CredentialsFile, cfg.SpreadsheetID)
		if err != nil {
			logger.Fatal("could not connect to spreadsheet", zap.Error(err))
		}
		logger.Info("connected to spreadsheet", zap.String("spreadsheet_id", cfg.SpreadsheetID))
	} else {
		store = sheetstore.NewMemoryStore()
		logger.Warn("no spreadsheet credentials configured; running with in-memory store, data will not persist")
	}
	if err := sheetstore.Bootstrap(ctx, store); err != nil {
		logger.Fatal("worksheet bootstrap failed", zap.Error(err))
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))
	router.Use(securityHeaders)

	// ── Shared state ────────────────────────────────────────
	sessions := session.NewStore()
	locks := keylock.New()

	// ── Phase 1: Catalog ────────────────────────────────────
	catalogRepo := catalog.NewSheetsRepository(store)
	cache := catalog.NewCache(catalogRepo, cfg.CacheTTL())
	catalogService := catalog.NewService(cache, catalogRepo, logger)
	catalogHandler := catalog.NewHandler(catalogService)
	catalogHandler.RegisterRoutes(router)

	// ── Phase 2: Cart ───────────────────────────────────────
	cartService := cart.NewService(cache)
	cartHandler := cart.NewHandler(cartService, sessions, cfg.SecureCookies)
	cartHandler.RegisterRoutes(router)

	// ── Phase 3: Inventory & Fulfillment ────────────────────
	inventoryRepo := inventory.NewSheetsRepository(store)
	inventoryService := inventory.NewService(inventoryRepo, cache, locks, logger)
	inventoryHandler := inventory.NewHandler(inventoryService)

	orderRepo := order.NewSheetsRepository(store)
	orderService := order.NewService(orderRepo, inventoryRepo, cache, locks, logger)
	orderHandler := order.NewHandler(orderService, cartHandler, cfg.SecureCookies)
	orderHandler.RegisterRoutes(router)

	// ── Phase 4: Analytics & Invoicing ──────────────────────
	analyticsService := analytics.NewService(orderRepo, cache)
	analyticsHandler := analytics.NewHandler(analyticsService)

	company := invoice.Company{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Phone:   cfg.CompanyPhone,
		Email:   cfg.CompanyEmail,
	}
	mailer := invoice.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	invoice.NewHandler(mailer, company).RegisterRoutes(router)

	// ── Phase 5: Admin ──────────────────────────────────────
	authService := auth.NewService(cfg.AdminPassword, cfg.JWTSecret, sessions, logger)
	authHandler := auth.NewHandler(authService, cfg.SecureCookies)
	authHandler.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(authHandler.RequireAdmin)
		catalogHandler.RegisterAdminRoutes(r)
		inventoryHandler.RegisterAdminRoutes(r)
		orderHandler.RegisterAdminRoutes(r)
		analyticsHandler.RegisterAdminRoutes(r)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":          "ok",
			"cache_ttl_secs":  cfg.CacheTTLSeconds,
			"store_connected": cfg.SpreadsheetID != "",
		})
	})

	// ── Start Server ─────────────────────────────────────────
	logger.Info("sheetpos API server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
