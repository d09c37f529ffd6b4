// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-core/internal/metrics"
	"github.com/olegiv/ocms-core/internal/middleware"
)

// Route patterns
const (
	RouteHealth    = "/healthz"
	RouteReady     = "/readyz"
	RouteMetrics   = "/metrics"
	RouteImage     = "/img/{options}/*"
	RoutePages     = "/api/pages"
	RoutePageSlug  = "/api/pages/{slug}"
	RoutePageID    = "/api/pages/{id:[0-9]+}"
	RouteLocalized = "/{locale}"
)

// RouterConfig holds the handlers and middleware settings of the router.
type RouterConfig struct {
	Logger      *slog.Logger
	TrustProxy  bool
	Development bool

	Catalogs      middleware.CatalogProvider
	DefaultLocale string

	Health   *HealthHandler
	Images   *ImageHandler
	Throttle middleware.ThrottleConfig
	Pages    *PagesHandler
	Metrics  *metrics.Metrics

	// APIToken guards the page write routes, which are not mounted when empty.
	APIToken string
}

// NewRouter builds the HTTP router.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.Development)))

	if cfg.Health != nil {
		r.Get(RouteHealth, cfg.Health.Health)
		r.Get(RouteReady, cfg.Health.Readiness)
	}
	if cfg.Metrics != nil {
		r.Handle(RouteMetrics, cfg.Metrics.Handler())
	}

	if cfg.Images != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ThrottleImages(cfg.Throttle))
			r.Get(RouteImage, cfg.Images.Serve)
			r.Head(RouteImage, cfg.Images.Serve)
		})
	}

	if cfg.Pages != nil && cfg.Catalogs != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.LocaleRedirect(cfg.Catalogs))
			r.Use(middleware.Locale(cfg.Catalogs, cfg.DefaultLocale))

			r.Get(RoutePages, cfg.Pages.List)
			r.Get(RoutePageSlug, cfg.Pages.GetBySlug)
			r.Get(RouteLocalized+RoutePages, cfg.Pages.List)
			r.Get(RouteLocalized+RoutePageSlug, cfg.Pages.GetBySlug)

			if cfg.APIToken != "" {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireBearer(cfg.APIToken))
					r.Post(RoutePages, cfg.Pages.Create)
					r.Put(RoutePageID, cfg.Pages.Update)
					r.Delete(RoutePageID, cfg.Pages.Delete)
				})
			}
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "Not found")
	})

	return r
}
