// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/olegiv/ocms-core/internal/localization"
	"github.com/olegiv/ocms-core/internal/model"
)

const activeLocalesKey = "locales:active"

// LocaleLoader reads the active locales from persistent storage.
type LocaleLoader interface {
	ListActiveLocales(ctx context.Context) ([]model.Locale, error)
}

// LocaleCache provides cached access to the active locale set.
// It is invalidated whenever a locale is activated or deactivated.
type LocaleCache struct {
	typed         *TypedCache[[]model.Locale]
	loader        LocaleLoader
	defaultLocale string
}

// NewLocaleCache creates a locale cache on top of c.
func NewLocaleCache(c Cacher, loader LocaleLoader, defaultLocale string, ttl time.Duration) *LocaleCache {
	return &LocaleCache{
		typed:         NewTypedCache[[]model.Locale](c, ttl),
		loader:        loader,
		defaultLocale: defaultLocale,
	}
}

// Active returns the active locales, in catalogue order.
func (c *LocaleCache) Active(ctx context.Context) ([]model.Locale, error) {
	return c.typed.GetOrSet(ctx, activeLocalesKey, c.loader.ListActiveLocales)
}

// ActiveCodes returns the codes of the active locales.
func (c *LocaleCache) ActiveCodes(ctx context.Context) ([]string, error) {
	locales, err := c.Active(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(locales))
	for i, l := range locales {
		codes[i] = l.Code
	}
	return codes, nil
}

// Catalog builds a catalog snapshot from the active locales.
func (c *LocaleCache) Catalog(ctx context.Context) (*localization.Catalog, error) {
	locales, err := c.Active(ctx)
	if err != nil {
		return nil, err
	}
	return localization.NewCatalog(c.defaultLocale, locales), nil
}

// Preload warms the cache.
func (c *LocaleCache) Preload(ctx context.Context) error {
	_, err := c.Active(ctx)
	return err
}

// Invalidate drops the cached locale set.
func (c *LocaleCache) Invalidate(ctx context.Context) error {
	return c.typed.Delete(ctx, activeLocalesKey)
}

var _ localization.LocaleProvider = (*LocaleCache)(nil)
