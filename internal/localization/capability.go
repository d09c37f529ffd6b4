// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localization

import (
	"context"

	"github.com/olegiv/ocms-core/internal/model"
)

// Entity identifies a stored entity by kind and ID.
type Entity interface {
	Kind() string
	EntityID() int64
}

// Sluggable is an entity with one slug per active locale.
type Sluggable interface {
	Entity
	// SlugFields lists the attributes the slug is built from, in order.
	SlugFields() []string
	// SlugValue returns a non-translated attribute. ok is false when the
	// entity does not define field.
	SlugValue(field, locale string) (value any, ok bool)
}

// Translatable is an entity with attributes stored per locale.
type Translatable interface {
	Entity
	TranslatedAttributes() []string
	Translations() *model.TranslationSet
}

// SlugStore persists slugs.
type SlugStore interface {
	SlugTaken(ctx context.Context, slug, locale, kind string, id int64) (bool, error)
	UpsertSlug(ctx context.Context, kind string, id int64, locale, slug string) error
	ListSlugs(ctx context.Context, kind string, id int64) ([]model.Slug, error)
	ListSlugsFor(ctx context.Context, kind string, ids []int64) ([]model.Slug, error)
	FindSlug(ctx context.Context, kind, slug, locale string) (model.Slug, error)
	DeleteSlugs(ctx context.Context, kind string, id int64) error
}

// TranslationStore persists translations.
type TranslationStore interface {
	UpsertTranslation(ctx context.Context, kind string, id int64, locale, key, body string) error
	ListTranslations(ctx context.Context, kind string, id int64) ([]model.Translation, error)
	ListTranslationsFor(ctx context.Context, kind string, ids []int64) ([]model.Translation, error)
	DeleteTranslations(ctx context.Context, kind string, id int64) error
}

// Store is implemented by store.Queries, on a database handle or inside a
// transaction.
type Store interface {
	SlugStore
	TranslationStore
}

// LocaleProvider returns the codes of the active locales.
type LocaleProvider interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

// StringValuer is implemented by enum-like values usable as slug sources.
type StringValuer interface {
	Value() string
}
