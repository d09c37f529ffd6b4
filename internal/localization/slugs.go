// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/olegiv/ocms-core/internal/model"
	"github.com/olegiv/ocms-core/internal/util"
)

// MaxSlugSuffix bounds the numeric suffix tried when a slug is taken.
const MaxSlugSuffix = 10000

// GenerateSlugs builds, deduplicates and stores the slug of e for every
// active locale. Slugs of inactive locales are left untouched.
func (r *Resolver) GenerateSlugs(ctx context.Context, e Sluggable) error {
	codes, err := r.locales.ActiveCodes(ctx)
	if err != nil {
		return fmt.Errorf("loading active locales: %w", err)
	}

	for _, locale := range codes {
		raw, err := r.rawSlugValue(ctx, e, locale)
		if err != nil {
			return err
		}

		slug, err := r.uniqueSlug(ctx, e, util.Slugify(raw), locale)
		if err != nil {
			return err
		}

		if err := r.store.UpsertSlug(ctx, e.Kind(), e.EntityID(), locale, slug); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSlugs stores explicit slug candidates keyed by locale. Candidates are
// not re-slugified, only made unique.
func (r *Resolver) UpdateSlugs(ctx context.Context, e Entity, slugs map[string]string) error {
	locales := make([]string, 0, len(slugs))
	for locale := range slugs {
		locales = append(locales, locale)
	}
	slices.Sort(locales)

	for _, locale := range locales {
		slug, err := r.uniqueSlug(ctx, e, slugs[locale], locale)
		if err != nil {
			return err
		}
		if err := r.store.UpsertSlug(ctx, e.Kind(), e.EntityID(), locale, slug); err != nil {
			return err
		}
	}
	return nil
}

// GetSlug returns the slug of e in locale, or "" when there is none.
func (r *Resolver) GetSlug(ctx context.Context, e Entity, locale string) (string, error) {
	slugs, err := r.store.ListSlugs(ctx, e.Kind(), e.EntityID())
	if err != nil {
		return "", err
	}
	for _, s := range slugs {
		if s.Locale == locale {
			return s.Slug, nil
		}
	}
	return "", nil
}

// GetSlugsArray returns every slug of e keyed by locale.
func (r *Resolver) GetSlugsArray(ctx context.Context, e Entity) (model.SlugMap, error) {
	slugs, err := r.store.ListSlugs(ctx, e.Kind(), e.EntityID())
	if err != nil {
		return nil, err
	}
	return model.SlugsByLocale(slugs), nil
}

// ResolveBySlug returns the ID of the entity of kind owning slug in locale.
func (r *Resolver) ResolveBySlug(ctx context.Context, kind, slug, locale string) (int64, error) {
	s, err := r.store.FindSlug(ctx, kind, slug, locale)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving slug %q: %w", slug, err)
	}
	return s.SluggableID, nil
}

// LoadSlugs returns the slugs of many entities of kind in one query, keyed by
// entity ID and then locale.
func (r *Resolver) LoadSlugs(ctx context.Context, kind string, ids []int64) (map[int64]model.SlugMap, error) {
	slugs, err := r.store.ListSlugsFor(ctx, kind, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]model.SlugMap, len(ids))
	for _, s := range slugs {
		m, ok := out[s.SluggableID]
		if !ok {
			m = model.SlugMap{}
			out[s.SluggableID] = m
		}
		m[s.Locale] = s.Slug
	}
	return out, nil
}

// DeleteSlugs removes every slug of e. Deleting twice is not an error.
func (r *Resolver) DeleteSlugs(ctx context.Context, e Entity) error {
	return r.store.DeleteSlugs(ctx, e.Kind(), e.EntityID())
}

// uniqueSlug returns base, or base-N for the smallest N not used in locale by
// another entity.
func (r *Resolver) uniqueSlug(ctx context.Context, e Entity, base, locale string) (string, error) {
	slug := base
	for n := 1; ; n++ {
		taken, err := r.store.SlugTaken(ctx, slug, locale, e.Kind(), e.EntityID())
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		if n > MaxSlugSuffix {
			return "", fmt.Errorf("%w: %q in %s", ErrSlugExhausted, base, locale)
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// rawSlugValue joins the non-empty slug source values of e in locale.
func (r *Resolver) rawSlugValue(ctx context.Context, e Sluggable, locale string) (string, error) {
	var translated []string
	t, isTranslatable := e.(Translatable)
	if isTranslatable {
		translated = t.TranslatedAttributes()
	}

	parts := make([]string, 0, len(e.SlugFields()))
	for _, field := range e.SlugFields() {
		var value string
		if slices.Contains(translated, field) {
			v, err := r.ReadTranslatedAttribute(ctx, t, field, locale)
			if err != nil {
				return "", err
			}
			value = v
		} else {
			v, ok := e.SlugValue(field, locale)
			if !ok {
				return "", &ConfigError{Kind: e.Kind(), Field: field}
			}
			value = stringValue(v)
		}

		if value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " "), nil
}

// stringValue reduces enum-like and string values to a string. Other values
// are treated as empty.
func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case StringValuer:
		return x.Value()
	case fmt.Stringer:
		return x.String()
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String()
	}
	return ""
}
