// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/olegiv/ocms-core/internal/model"
)

// SlugCache caches slug to entity ID lookups, keyed by kind, locale and slug.
type SlugCache struct {
	typed *TypedCache[int64]
}

// NewSlugCache creates a slug cache on top of c.
func NewSlugCache(c Cacher, ttl time.Duration) *SlugCache {
	return &SlugCache{
		typed: NewTypedCache[int64](c, ttl),
	}
}

func slugKey(kind, locale, slug string) string {
	return "slug:" + kind + ":" + locale + ":" + slug
}

// Resolve returns the cached ID for the slug, calling load on a miss.
// Load errors are not cached.
func (c *SlugCache) Resolve(ctx context.Context, kind, locale, slug string, load func(context.Context) (int64, error)) (int64, error) {
	return c.typed.GetOrSet(ctx, slugKey(kind, locale, slug), load)
}

// Forget removes the given slugs (locale to slug) from the cache.
func (c *SlugCache) Forget(ctx context.Context, kind string, slugs model.SlugMap) error {
	for locale, slug := range slugs {
		if err := c.typed.Delete(ctx, slugKey(kind, locale, slug)); err != nil {
			return err
		}
	}
	return nil
}
