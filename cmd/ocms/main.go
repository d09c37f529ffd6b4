// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/ocms-core/internal/cache"
	"github.com/olegiv/ocms-core/internal/config"
	"github.com/olegiv/ocms-core/internal/handler"
	"github.com/olegiv/ocms-core/internal/imaging"
	"github.com/olegiv/ocms-core/internal/logging"
	"github.com/olegiv/ocms-core/internal/metrics"
	"github.com/olegiv/ocms-core/internal/middleware"
	"github.com/olegiv/ocms-core/internal/ratelimit"
	"github.com/olegiv/ocms-core/internal/service"
	"github.com/olegiv/ocms-core/internal/storage"
	"github.com/olegiv/ocms-core/internal/store"
	"github.com/olegiv/ocms-core/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.BoolVar(showVersion, "v", false, "Show version information and exit (shorthand)")
	showHelp := flag.Bool("help", false, "Show help message and exit")
	flag.BoolVar(showHelp, "h", false, "Show help message and exit (shorthand)")

	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	if *showVersion {
		fmt.Println(buildInfo().String())
		os.Exit(0)
	}
	if *showHelp {
		usage(os.Stdout)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `ocms - localized pages and on-demand images

Usage:
  ocms [flags]

Flags:
  -v, -version    Show version information and exit
  -h, -help       Show this help message and exit

Environment Variables:
  OCMS_DB_DRIVER            Database driver: sqlite, sqlite3 or mysql (default: sqlite)
  OCMS_DB_PATH              SQLite database path (default: ./data/ocms.db)
  OCMS_DB_DSN               Database DSN, required for mysql
  OCMS_SERVER_HOST          Server host (default: localhost)
  OCMS_SERVER_PORT          Server port (default: 8080)
  OCMS_ENV                  Environment: development, production (default: development)
  OCMS_LOG_LEVEL            Log level: debug, info, warn, error (default: info)
  OCMS_LOG_FORMAT           Log format: console or json
  OCMS_TRUST_PROXY          Trust X-Forwarded-For headers (default: false)
  OCMS_API_TOKEN            Bearer token enabling the page write API
  OCMS_MEDIA_BUCKET         Media bucket URL (default: file://./uploads)
  OCMS_REDIS_URL            Redis URL for the shared cache and rate limiter
  OCMS_CACHE_PREFIX         Redis key prefix (default: ocms:)
  OCMS_CACHE_TTL            Cache TTL in seconds (default: 3600)
  OCMS_CACHE_MAX_SIZE       Max memory cache entries (default: 10000)
  OCMS_DEFAULT_LOCALE       Default locale (default: en)
  OCMS_ACTIVE_LOCALES       Comma separated locales activated by seeding
  OCMS_DO_SEED              Activate OCMS_ACTIVE_LOCALES on startup (default: false)
  OCMS_IMAGE_CACHE_MAX_AGE  Image Cache-Control max-age in seconds (default: 2592000)
  OCMS_IMAGE_MAX_DIMENSION  Longest edge of a scaled image (default: 1920)
  OCMS_IMAGE_RATE_LIMIT     Requests per image and client per window (default: 2)
  OCMS_IMAGE_RATE_WINDOW    Rate limit window (default: 1m)
  OCMS_IMAGE_RATE_LIMITER   Limiter: window or token (default: window)
  OCMS_IMAGE_WORKERS        Image worker pool size (default: number of CPUs)

Version: %s
`, buildInfo().String())
}

func run() error {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	format := logging.FormatConsole
	if cfg.JSONLogs() {
		format = logging.FormatJSON
	}
	logger := slog.New(logging.New(os.Stdout, format, cfg.SlogLevel()))
	slog.SetDefault(logger)

	slog.Info("starting oCMS", append(buildInfo().LogAttrs(), "env", cfg.Env)...)

	ctx := context.Background()

	if cfg.DBDriver != store.DriverMySQL && cfg.DBDSN == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := store.Open(store.DefaultDBConfig(cfg.DBDriver, cfg.DSN()))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready", "driver", cfg.DBDriver)

	if cfg.DoSeed && len(cfg.ActiveLocales) > 0 {
		if err := store.Seed(ctx, db, cfg.ActiveLocales); err != nil {
			return fmt.Errorf("seeding locales: %w", err)
		}
		slog.Info("activated locales", "locales", strings.Join(cfg.ActiveLocales, ","))
	}

	var redisClient redis.UniversalClient
	cacheType := cache.TypeMemory
	if cfg.UseRedis() {
		client, err := cache.NewRedisClient(ctx, cache.DefaultRedisOptions(cfg.RedisURL))
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		redisClient = client
		cacheType = cache.TypeRedis
	}

	cacher, err := cache.NewCache(ctx, cache.Config{
		Type:            cacheType,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, redisClient)
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer func() { _ = cacher.Close() }()
	slog.Info("cache ready", "type", cacheType)

	locales := cache.NewLocaleCache(cacher, store.New(db), cfg.DefaultLocale, cfg.CacheTTLDuration())
	if cfg.DoSeed {
		// A shared cache may still hold the locale set from before seeding.
		if err := locales.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidating locale cache: %w", err)
		}
	}
	if err := locales.Preload(ctx); err != nil {
		return fmt.Errorf("loading locales: %w", err)
	}
	slugs := cache.NewSlugCache(cacher, cfg.CacheTTLDuration())

	media, err := storage.Open(ctx, cfg.MediaBucket)
	if err != nil {
		return fmt.Errorf("opening media bucket: %w", err)
	}
	defer func() { _ = media.Close() }()

	transformer := imaging.NewTransformer(media, imaging.Config{
		CacheMaxAge:  cfg.ImageCacheMaxAgeDuration(),
		MaxDimension: cfg.ImageMaxDimension,
	})

	pool, err := ants.NewPool(cfg.Workers(), ants.WithNonblocking(true))
	if err != nil {
		return fmt.Errorf("creating image worker pool: %w", err)
	}
	defer pool.Release()

	m := metrics.New(pool.Running)

	limiter, closeLimiter := newLimiter(cfg, redisClient)
	defer closeLimiter()

	pages := service.NewPageService(db, locales, slugs)
	pages.SetObserver(m)

	var health handler.Pinger
	if p, ok := cacher.(handler.Pinger); ok {
		health = p
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:        logger,
		TrustProxy:    cfg.TrustProxy,
		Development:   cfg.IsDevelopment(),
		Catalogs:      locales,
		DefaultLocale: cfg.DefaultLocale,
		Health:        handler.NewHealthHandler(db, health),
		Images:        handler.NewImageHandler(transformer, pool, m),
		Throttle: middleware.ThrottleConfig{
			Limiter:  limiter,
			Enabled:  cfg.IsProduction(),
			OnReject: m.Throttled,
		},
		Pages:    handler.NewPagesHandler(pages, cfg.DefaultLocale),
		Metrics:  m,
		APIToken: cfg.APIToken,
	})
	if !cfg.WriteAPI() {
		slog.Info("page write API disabled, set OCMS_API_TOKEN to enable it")
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newLimiter picks the image throttle backend. The returned func releases
// limiter resources.
func newLimiter(cfg *config.Config, client redis.UniversalClient) (ratelimit.Limiter, func()) {
	rl := ratelimit.Config{
		Limit:     cfg.ImageRateLimit,
		Window:    cfg.ImageRateWindow,
		KeyPrefix: cfg.CachePrefix + "img",
	}

	switch {
	case cfg.ImageRateLimiter == "token":
		l := ratelimit.NewTokenLimiter(rl)
		return l, func() { _ = l.Close() }
	case client != nil:
		return ratelimit.NewWindowLimiter(client, rl), func() {}
	default:
		return ratelimit.NewMemoryLimiter(rl), func() {}
	}
}
