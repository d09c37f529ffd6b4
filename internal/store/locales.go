// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/ocms-core/internal/model"
)

const localeColumns = `id, code, name, endonym, script, regional, rtl, active, published, created_at, updated_at`

// ListLocales returns all locales ordered by id.
func (q *Queries) ListLocales(ctx context.Context) ([]model.Locale, error) {
	var locales []model.Locale
	err := sqlx.SelectContext(ctx, q.db, &locales, `SELECT `+localeColumns+` FROM locales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing locales: %w", err)
	}
	return locales, nil
}

// ListActiveLocales returns active locales ordered by id.
func (q *Queries) ListActiveLocales(ctx context.Context) ([]model.Locale, error) {
	var locales []model.Locale
	err := sqlx.SelectContext(ctx, q.db, &locales, `SELECT `+localeColumns+` FROM locales WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing active locales: %w", err)
	}
	return locales, nil
}

// GetLocale returns the locale with code.
func (q *Queries) GetLocale(ctx context.Context, code string) (model.Locale, error) {
	var l model.Locale
	err := sqlx.GetContext(ctx, q.db, &l, q.db.Rebind(`SELECT `+localeColumns+` FROM locales WHERE code = ?`), code)
	return l, err
}

// SetLocaleActive enables or disables a locale.
func (q *Queries) SetLocaleActive(ctx context.Context, code string, active bool) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(`UPDATE locales SET active = ?, updated_at = ? WHERE code = ?`),
		active, q.now(), code)
	if err != nil {
		return fmt.Errorf("updating locale %s: %w", code, err)
	}
	return nil
}
