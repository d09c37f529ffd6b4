// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-core/internal/ratelimit"
	"github.com/olegiv/ocms-core/internal/util"
)

// ThrottleConfig configures ThrottleImages.
type ThrottleConfig struct {
	Limiter ratelimit.Limiter
	// Enabled is false outside production.
	Enabled bool
	// OnReject is called for each throttled request.
	OnReject func(r *http.Request)
}

// ThrottleImages limits repeated requests for the same image from the same
// public client address. Throttled requests get a plain 404 so scanners
// cannot tell a limiter is in place. Private and reserved addresses are
// never limited.
func ThrottleImages(cfg ThrottleConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !util.IsPublicIP(ip) {
				next.ServeHTTP(w, r)
				return
			}

			path := chi.URLParam(r, "*")
			if path == "" {
				path = r.URL.Path
			}

			if !cfg.Limiter.Allow(r.Context(), "img:"+ip+":"+path) {
				slog.DebugContext(r.Context(), "image request throttled", "ip", ip, "path", path)
				if cfg.OnReject != nil {
					cfg.OnReject(r)
				}
				http.Error(w, "File not found", http.StatusNotFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
