// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/ocms-core/internal/localization"
)

// CatalogProvider returns the current locale catalog.
type CatalogProvider interface {
	Catalog(ctx context.Context) (*localization.Catalog, error)
}

// Locale sets the request locale from the first path segment when it names
// an active locale, and to the default locale otherwise. When the catalog
// cannot be loaded the fallback locale is used.
func Locale(catalogs CatalogProvider, fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			locale := fallback
			catalog, err := catalogs.Catalog(ctx)
			if err != nil {
				slog.WarnContext(ctx, "loading locale catalog", "error", err)
			} else {
				locale = catalog.Default()
				if code, ok := catalog.FromPath(r.URL.Path); ok {
					locale = code
				}
			}

			next.ServeHTTP(w, r.WithContext(localization.WithLocale(ctx, locale)))
		})
	}
}

// LocaleRedirect redirects GET and HEAD requests whose path starts with the
// default locale to the same path without it, since the default locale is
// served unprefixed.
func LocaleRedirect(catalogs CatalogProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			catalog, err := catalogs.Catalog(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			code, ok := catalog.FromPath(r.URL.Path)
			if !ok || code != catalog.Default() {
				next.ServeHTTP(w, r)
				return
			}

			target := catalog.StripDefaultLocale(r.URL.Path)
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			w.Header().Set("Vary", "Accept-Language")
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}
