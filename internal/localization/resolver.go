// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package localization generates and resolves per-locale slugs and reads and
// writes per-locale attribute translations with fallback.
package localization

// Resolver runs slug and translation operations against a store. It holds no
// per-request state; locales are always passed explicitly.
type Resolver struct {
	store   Store
	locales LocaleProvider
}

// New creates a resolver.
func New(store Store, locales LocaleProvider) *Resolver {
	return &Resolver{store: store, locales: locales}
}

// WithStore returns a resolver using st, typically queries bound to a
// transaction.
func (r *Resolver) WithStore(st Store) *Resolver {
	return &Resolver{store: st, locales: r.locales}
}
