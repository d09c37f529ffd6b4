// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"

	"github.com/olegiv/ocms-core/internal/store"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver   string `env:"OCMS_DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"OCMS_DB_PATH" envDefault:"./data/ocms.db"`
	DBDSN      string `env:"OCMS_DB_DSN"` // Overrides DBPath; required for mysql
	ServerHost string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"OCMS_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"OCMS_LOG_FORMAT"` // console or json; defaults by environment
	TrustProxy bool   `env:"OCMS_TRUST_PROXY" envDefault:"false"`
	APIToken   string `env:"OCMS_API_TOKEN"` // Enables the page write API when set

	// Content store
	MediaBucket string `env:"OCMS_MEDIA_BUCKET" envDefault:"file://./uploads"` // gocloud.dev bucket URL

	// Cache configuration
	RedisURL     string `env:"OCMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OCMS_CACHE_PREFIX" envDefault:"ocms:"`   // Redis key prefix
	CacheTTL     int    `env:"OCMS_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Localization
	DefaultLocale string   `env:"OCMS_DEFAULT_LOCALE" envDefault:"en"`
	ActiveLocales []string `env:"OCMS_ACTIVE_LOCALES" envSeparator:","` // Activated on seed; empty keeps the stored set

	// Images
	ImageCacheMaxAge  int           `env:"OCMS_IMAGE_CACHE_MAX_AGE" envDefault:"2592000"` // seconds
	ImageMaxDimension int           `env:"OCMS_IMAGE_MAX_DIMENSION" envDefault:"1920"`
	ImageRateLimit    int           `env:"OCMS_IMAGE_RATE_LIMIT" envDefault:"2"`
	ImageRateWindow   time.Duration `env:"OCMS_IMAGE_RATE_WINDOW" envDefault:"1m"`
	ImageRateLimiter  string        `env:"OCMS_IMAGE_RATE_LIMITER" envDefault:"window"` // window or token
	ImageWorkers      int           `env:"OCMS_IMAGE_WORKERS"`                          // 0 = NumCPU

	// Seeding configuration
	DoSeed bool `env:"OCMS_DO_SEED" envDefault:"false"` // Activate ActiveLocales on startup
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if Redis is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// WriteAPI reports whether the page write endpoints are mounted.
func (c Config) WriteAPI() bool {
	return c.APIToken != ""
}

// DSN returns the database DSN, falling back to DBPath.
func (c Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	return c.DBPath
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// ImageCacheMaxAgeDuration returns ImageCacheMaxAge as a duration.
func (c Config) ImageCacheMaxAgeDuration() time.Duration {
	return time.Duration(c.ImageCacheMaxAge) * time.Second
}

// Workers returns the image worker pool size.
func (c Config) Workers() int {
	if c.ImageWorkers > 0 {
		return c.ImageWorkers
	}
	return runtime.NumCPU()
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONLogs reports whether logs should be emitted as JSON.
func (c Config) JSONLogs() bool {
	if c.LogFormat != "" {
		return c.LogFormat == "json"
	}
	return c.IsProduction()
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if !store.IsSupportedDriver(c.DBDriver) {
		errs = append(errs, fmt.Errorf("OCMS_DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.DBDriver == store.DriverMySQL && c.DBDSN == "" {
		errs = append(errs, errors.New("OCMS_DB_DSN is required for mysql"))
	}

	if _, err := language.Parse(c.DefaultLocale); err != nil {
		errs = append(errs, fmt.Errorf("OCMS_DEFAULT_LOCALE %q: %w", c.DefaultLocale, err))
	}
	for i, code := range c.ActiveLocales {
		code = strings.TrimSpace(code)
		c.ActiveLocales[i] = code
		if _, err := language.Parse(code); err != nil {
			errs = append(errs, fmt.Errorf("OCMS_ACTIVE_LOCALES %q: %w", code, err))
		}
	}
	if len(c.ActiveLocales) > 0 && !slices.Contains(c.ActiveLocales, c.DefaultLocale) {
		errs = append(errs, fmt.Errorf("OCMS_ACTIVE_LOCALES must include the default locale %q", c.DefaultLocale))
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("OCMS_SERVER_PORT %d out of range", c.ServerPort))
	}
	if c.ImageCacheMaxAge <= 0 {
		errs = append(errs, errors.New("OCMS_IMAGE_CACHE_MAX_AGE must be positive"))
	}
	if c.ImageMaxDimension <= 0 {
		errs = append(errs, errors.New("OCMS_IMAGE_MAX_DIMENSION must be positive"))
	}
	if c.ImageRateLimit < 0 {
		errs = append(errs, errors.New("OCMS_IMAGE_RATE_LIMIT must not be negative"))
	}
	if c.ImageRateWindow <= 0 {
		errs = append(errs, errors.New("OCMS_IMAGE_RATE_WINDOW must be positive"))
	}
	if c.ImageRateLimiter != "window" && c.ImageRateLimiter != "token" {
		errs = append(errs, fmt.Errorf("OCMS_IMAGE_RATE_LIMITER %q must be window or token", c.ImageRateLimiter))
	}
	if c.APIToken != "" && len(c.APIToken) < 16 {
		errs = append(errs, errors.New("OCMS_API_TOKEN must be at least 16 characters"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("OCMS_CACHE_TTL must be positive"))
	}

	return errors.Join(errs...)
}
