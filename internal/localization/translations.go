// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localization

import (
	"context"
	"fmt"
	"slices"

	"github.com/olegiv/ocms-core/internal/model"
)

// SetPendingTranslation buffers a value for attr until the next
// SyncTranslations. A string value is stored for locale; a map replaces the
// whole locale mapping. Undeclared attributes and other value types are
// ignored.
func SetPendingTranslation(e Translatable, attr string, value any, locale string) {
	if !slices.Contains(e.TranslatedAttributes(), attr) {
		return
	}

	switch v := value.(type) {
	case string:
		e.Translations().SetPending(attr, locale, v)
	case map[string]string:
		e.Translations().SetPendingAll(attr, v)
	}
}

// SyncTranslations writes a row for every translated attribute of e and
// every active locale, taking the body from the buffer or "" when none was
// set. Loaded translations are discarded so the next read sees the new rows.
func (r *Resolver) SyncTranslations(ctx context.Context, e Translatable) error {
	codes, err := r.locales.ActiveCodes(ctx)
	if err != nil {
		return fmt.Errorf("loading active locales: %w", err)
	}

	set := e.Translations()
	for _, attr := range e.TranslatedAttributes() {
		for _, locale := range codes {
			body, _ := set.Pending(attr, locale)
			if err := r.store.UpsertTranslation(ctx, e.Kind(), e.EntityID(), locale, attr, body); err != nil {
				return err
			}
		}
	}

	set.Unload()
	return nil
}

// ReadTranslatedAttribute returns attr of e in locale. When that body is
// empty or missing the first non-empty body of attr in any locale is used,
// and "" when there is none.
func (r *Resolver) ReadTranslatedAttribute(ctx context.Context, e Translatable, attr, locale string) (string, error) {
	rows, err := r.loaded(ctx, e)
	if err != nil {
		return "", err
	}
	return resolveTranslation(rows, attr, locale), nil
}

// TranslationsFor returns every stored body of attr keyed by locale, without
// fallback.
func (r *Resolver) TranslationsFor(ctx context.Context, e Translatable, attr string) (map[string]string, error) {
	rows, err := r.loaded(ctx, e)
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	for _, t := range rows {
		if t.Key == attr {
			out[t.Locale] = t.Body
		}
	}
	return out, nil
}

// DeleteTranslations removes every translation of e. Deleting twice is not
// an error.
func (r *Resolver) DeleteTranslations(ctx context.Context, e Translatable) error {
	if err := r.store.DeleteTranslations(ctx, e.Kind(), e.EntityID()); err != nil {
		return err
	}
	e.Translations().Unload()
	return nil
}

// LoadTranslations loads the translations of many entities of the same kind
// in one query and attaches them to each entity.
func (r *Resolver) LoadTranslations(ctx context.Context, entities ...Translatable) error {
	if len(entities) == 0 {
		return nil
	}

	kind := entities[0].Kind()
	ids := make([]int64, 0, len(entities))
	for _, e := range entities {
		if e.Kind() != kind {
			return fmt.Errorf("loading translations: mixed kinds %s and %s", kind, e.Kind())
		}
		ids = append(ids, e.EntityID())
	}

	rows, err := r.store.ListTranslationsFor(ctx, kind, ids)
	if err != nil {
		return err
	}

	byID := make(map[int64][]model.Translation, len(entities))
	for _, t := range rows {
		byID[t.TranslatableID] = append(byID[t.TranslatableID], t)
	}
	for _, e := range entities {
		e.Translations().SetLoaded(byID[e.EntityID()])
	}
	return nil
}

func (r *Resolver) loaded(ctx context.Context, e Translatable) ([]model.Translation, error) {
	set := e.Translations()
	if rows, ok := set.Loaded(); ok {
		return rows, nil
	}

	rows, err := r.store.ListTranslations(ctx, e.Kind(), e.EntityID())
	if err != nil {
		return nil, err
	}
	set.SetLoaded(rows)
	return rows, nil
}

func resolveTranslation(rows []model.Translation, attr, locale string) string {
	fallback := ""
	for _, t := range rows {
		if t.Key != attr || t.Body == "" {
			continue
		}
		if t.Locale == locale {
			return t.Body
		}
		if fallback == "" {
			fallback = t.Body
		}
	}
	return fallback
}
