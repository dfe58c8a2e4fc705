// Package main is the entry point for the SmartParts catalog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartparts/internal/cache"
	"smartparts/internal/config"
	"smartparts/internal/database"
	"smartparts/internal/handlers"
	"smartparts/internal/middleware"
	"smartparts/internal/router"
	"smartparts/internal/storage"
	"smartparts/internal/store"
	"smartparts/internal/tree"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (optional — the tree is served from PostgreSQL
	// when the cache is down).
	var treeCache *cache.TreeCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Warn("valkey unavailable — tree caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		treeCache = cache.NewTreeCache(valkeyClient, cache.DefaultTreeTTL)
	}

	// Connect to S3-compatible object storage (optional — the catalog works
	// without it, attachment uploads are just refused).
	storageClient, err := storage.New(context.Background(),
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — attachment uploads disabled")
	}

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db)
	partStore := store.NewPartStore(db)
	attachmentStore := store.NewAttachmentStore(db)
	fieldStore := store.NewCustomFieldStore(db)

	// Tree engine on top of the category store.
	navigator := tree.NewNavigator(categoryStore)
	mutator := tree.NewMutator(categoryStore, navigator, partStore)

	// Create handler groups with their dependencies.
	categoryHandlers := handlers.NewCategories(navigator, mutator, fieldStore, partStore, treeCache)
	partHandlers := handlers.NewParts(partStore, attachmentStore, storageClient)
	attachmentHandlers := handlers.NewAttachments(partStore, attachmentStore, storageClient)

	// Per-IP rate limit across the whole API.
	rl := middleware.NewRateLimiter(300, time.Minute)
	defer rl.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(rl, categoryHandlers, partHandlers, attachmentHandlers)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate attachment uploads on slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
