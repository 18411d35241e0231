package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/config"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/handlers"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/middleware"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/repository"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/service"
	"github.com/Lixing-Zhang/kbeauty-catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting catalog server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"catalog_path", cfg.Catalog.Path,
		"catalog_cache", cfg.Catalog.Cache,
	)

	productRepo := repository.NewJSONFileProductRepository(cfg.Catalog.Path, cfg.Catalog.Cache)
	catalogService := service.NewCatalogService(productRepo, log)

	// The catalog is read on every request; a bad file at startup is only a warning
	if products, err := catalogService.ListProducts(context.Background()); err != nil {
		log.Warn("catalog not loadable at startup", "error", err)
	} else {
		log.Info("catalog loaded", "products", len(products))
	}

	pageHandler, err := handlers.NewPageHandler(catalogService, cfg.Catalog.ImageRoot, log)
	if err != nil {
		log.Error("failed to initialize page handler", "error", err)
		os.Exit(1)
	}
	healthHandler := handlers.NewHealthHandler(catalogService, log)
	productHandler := handlers.NewProductHandler(catalogService, log)

	r := newRouter(cfg, log, pageHandler, healthHandler, productHandler)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func newRouter(
	cfg *config.Config,
	log *slog.Logger,
	pageHandler *handlers.PageHandler,
	healthHandler *handlers.HealthHandler,
	productHandler *handlers.ProductHandler,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if cfg.RateLimit.Requests > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Window)*time.Second))
	}

	r.Get("/health", healthHandler.ServeHTTP)
	r.With(middleware.APIKeyAuth(cfg.Auth)).Handle("/metrics", promhttp.Handler())

	// Catalog page and product images
	r.Get("/", pageHandler.ServeHTTP)
	imageServer := http.StripPrefix(handlers.ImagePathPrefix, http.FileServer(http.Dir(cfg.Catalog.ImageRoot)))
	r.Handle(handlers.ImagePathPrefix+"*", imageServer)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/categories", productHandler.ListCategories)
		r.Get("/product/{name}/recommendations", productHandler.GetRecommendations)
	})

	return r
}
