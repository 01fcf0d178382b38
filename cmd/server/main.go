// Command server runs the inventory dashboard backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appcatalog "github.com/omnistock/backend/internal/application/catalog"
	appidentity "github.com/omnistock/backend/internal/application/identity"
	appinventory "github.com/omnistock/backend/internal/application/inventory"
	appsync "github.com/omnistock/backend/internal/application/sync"
	"github.com/omnistock/backend/internal/infrastructure/auth"
	"github.com/omnistock/backend/internal/infrastructure/cache"
	"github.com/omnistock/backend/internal/infrastructure/config"
	"github.com/omnistock/backend/internal/infrastructure/logger"
	"github.com/omnistock/backend/internal/infrastructure/marketplace"
	"github.com/omnistock/backend/internal/infrastructure/persistence"
	"github.com/omnistock/backend/internal/infrastructure/storage"
	"github.com/omnistock/backend/internal/interfaces/http/handler"
	"github.com/omnistock/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	gormLevel := gormlogger.Warn
	if cfg.App.Env != "production" {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, logger.NewGormLogger(log, gormLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Cache, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer idempotencyStore.Close()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	processedOrderRepo := persistence.NewGormProcessedOrderRepository(db.DB)
	tokenRepo := persistence.NewGormTokenRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Marketplace adapters
	registry := marketplace.NewAdapterRegistry(cfg.Channels, tokenRepo, log)
	for _, adapter := range registry.ListEnabled() {
		log.Info("Channel enabled", zap.String("channel", adapter.Code().String()))
	}

	// Object storage is optional; exports fail cleanly without it
	var objectStorage appinventory.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	productService := appcatalog.NewProductService(productRepo, log)
	stockService := appinventory.NewStockService(productRepo, movementRepo, log)
	exportService := appinventory.NewExportService(movementRepo, objectStorage, log)
	syncService := appsync.NewSyncService(productRepo, registry, log)
	ingestionService := appsync.NewIngestionService(registry, processedOrderRepo, idempotencyStore, cfg.Cache.TTL, log)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)

	// HTTP
	engine := router.New(router.Options{
		Config: cfg,
		Logger: log,
		Tokens: jwtService,
		Public: []router.RouteRegistrar{
			handler.NewHealthHandler(db, version),
			handler.NewAuthHandler(authService),
			handler.NewWebhookHandler(ingestionService, log),
		},
		Protected: []router.RouteRegistrar{
			handler.NewProductHandler(productService),
			handler.NewStockHandler(stockService, exportService),
			handler.NewSyncHandler(syncService, ingestionService),
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
