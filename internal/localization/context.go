// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localization

import "context"

type localeKey struct{}

// WithLocale returns a context carrying the request locale.
func WithLocale(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, localeKey{}, code)
}

// LocaleFrom returns the request locale, or fallback when none is set.
func LocaleFrom(ctx context.Context, fallback string) string {
	if code, ok := ctx.Value(localeKey{}).(string); ok && code != "" {
		return code
	}
	return fallback
}
