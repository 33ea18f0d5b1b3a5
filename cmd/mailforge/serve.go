// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mailforge/internal/cache"
	"mailforge/internal/config"
	"mailforge/internal/database"
	"mailforge/internal/export"
	"mailforge/internal/handlers"
	"mailforge/internal/live"
	"mailforge/internal/locale"
	"mailforge/internal/middleware"
	"mailforge/internal/router"
	"mailforge/internal/session"
	"mailforge/internal/share"
	"mailforge/internal/storage"
	"mailforge/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor API server",
	Long: `Start the editor API. Configuration comes from the environment and an
optional .env file; STORE_BACKEND picks where templates are kept.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	setupLogger(cfg.IsDev(), cfg.Level())
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "store", cfg.StoreBackend)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	catalog, err := locale.Load(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	// Valkey is optional: it backs sessions and the shared export cache,
	// and is required only for the valkey store backend.
	var valkey *redis.Client
	if cfg.ValkeyEnabled() {
		valkey, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer valkey.Close()
	} else {
		slog.Warn("valkey not configured, sessions and export cache are in-process only")
	}

	deps := handlers.Deps{Catalog: catalog, MaxUpload: cfg.MaxUploadBytes()}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		if v, err := database.Version(db); err == nil {
			slog.Info("database schema ready", "version", v)
		}
		deps.Templates = store.NewTemplateStore(db)
		deps.Publications = store.NewPublicationStore(db)
	case config.BackendValkey:
		deps.Templates = store.NewValkeyStore(valkey)
	default:
		slog.Warn("using in-memory template store, templates are lost on restart")
		deps.Templates = store.NewMemoryStore()
	}

	if cfg.Seed {
		if _, err := store.Seed(ctx, deps.Templates, catalog.Get(cfg.DefaultLocale).Templates.NewName); err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
	}

	secureCookies := cfg.SecureCookies || !cfg.IsDev()
	if valkey != nil {
		deps.Sessions = session.NewStore(valkey, secureCookies)
	} else {
		deps.Sessions = session.NewMemoryStore(secureCookies)
	}

	var raster export.Rasterizer
	if cfg.RasterizerURL != "" {
		raster = export.NewHTTPRasterizer(cfg.RasterizerURL)
	} else {
		slog.Warn("rasterizer not configured, PDF export disabled")
	}
	var remote export.Cache
	if valkey != nil {
		ec := cache.NewExportCache(valkey, cfg.ExportCacheTTL)
		// Cached exports may come from an older renderer.
		ec.InvalidateAll(ctx)
		remote = ec
	}
	deps.Exporter = export.New(raster, remote)

	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		deps.Storage, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3BucketPrivate, cfg.S3PublicURL,
		)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint,
			"public_bucket", deps.Storage.PublicBucket(), "private_bucket", deps.Storage.PrivateBucket())
	} else {
		slog.Warn("s3 storage not configured, publishing and image uploads disabled")
	}

	deps.Share = share.NewSender(cfg.ShareWebhookURL, cfg.ShareTimeout)
	deps.Hub = live.NewHub(cfg.AllowedOrigins...)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	defer limiter.Stop()

	r := router.New(router.Options{
		Sessions:      deps.Sessions,
		Catalog:       catalog,
		Limiter:       limiter,
		SecureCookies: secureCookies,
	}, handlers.NewEditor(deps))

	// WriteTimeout covers PDF export, which waits on the rasterizer.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
