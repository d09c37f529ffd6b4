// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/ocms-core/internal/model"
)

const slugColumns = `id, slug, locale, sluggable_type, sluggable_id, created_at, updated_at`

// SlugTaken reports whether slug is used in locale by any entity other than
// (kind, id).
func (q *Queries) SlugTaken(ctx context.Context, slug, locale, kind string, id int64) (bool, error) {
	var n int64
	err := sqlx.GetContext(ctx, q.db, &n, q.db.Rebind(`
		SELECT COUNT(*) FROM slugs
		WHERE locale = ? AND slug = ? AND (sluggable_id <> ? OR sluggable_type <> ?)`),
		locale, slug, id, kind)
	if err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return n > 0, nil
}

// UpsertSlug sets the slug of (kind, id) in locale, creating the row if needed.
func (q *Queries) UpsertSlug(ctx context.Context, kind string, id int64, locale, slug string) error {
	now := q.now()

	var rowID int64
	err := sqlx.GetContext(ctx, q.db, &rowID, q.db.Rebind(`
		SELECT id FROM slugs WHERE sluggable_type = ? AND sluggable_id = ? AND locale = ?`),
		kind, id, locale)
	switch {
	case err == nil:
		_, err = q.db.ExecContext(ctx, q.db.Rebind(`UPDATE slugs SET slug = ?, updated_at = ? WHERE id = ?`),
			slug, now, rowID)
	case errors.Is(err, sql.ErrNoRows):
		_, err = q.db.ExecContext(ctx, q.db.Rebind(`
			INSERT INTO slugs (slug, locale, sluggable_type, sluggable_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			slug, locale, kind, id, now, now)
	}
	if err != nil {
		return fmt.Errorf("saving slug %q (%s): %w", slug, locale, err)
	}
	return nil
}

// ListSlugs returns the slugs of (kind, id) ordered by id.
func (q *Queries) ListSlugs(ctx context.Context, kind string, id int64) ([]model.Slug, error) {
	var slugs []model.Slug
	err := sqlx.SelectContext(ctx, q.db, &slugs, q.db.Rebind(`
		SELECT `+slugColumns+` FROM slugs WHERE sluggable_type = ? AND sluggable_id = ? ORDER BY id`),
		kind, id)
	if err != nil {
		return nil, fmt.Errorf("listing slugs: %w", err)
	}
	return slugs, nil
}

// ListSlugsFor returns the slugs of all given entities of kind.
func (q *Queries) ListSlugsFor(ctx context.Context, kind string, ids []int64) ([]model.Slug, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := q.in(`
		SELECT `+slugColumns+` FROM slugs WHERE sluggable_type = ? AND sluggable_id IN (?) ORDER BY id`,
		kind, ids)
	if err != nil {
		return nil, err
	}

	var slugs []model.Slug
	if err := sqlx.SelectContext(ctx, q.db, &slugs, query, args...); err != nil {
		return nil, fmt.Errorf("listing slugs: %w", err)
	}
	return slugs, nil
}

// FindSlug returns the slug row of kind matching slug in locale.
// It returns sql.ErrNoRows when nothing matches.
func (q *Queries) FindSlug(ctx context.Context, kind, slug, locale string) (model.Slug, error) {
	var s model.Slug
	err := sqlx.GetContext(ctx, q.db, &s, q.db.Rebind(`
		SELECT `+slugColumns+` FROM slugs WHERE sluggable_type = ? AND slug = ? AND locale = ?`),
		kind, slug, locale)
	return s, err
}

// DeleteSlugs removes every slug of (kind, id).
func (q *Queries) DeleteSlugs(ctx context.Context, kind string, id int64) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(`DELETE FROM slugs WHERE sluggable_type = ? AND sluggable_id = ?`),
		kind, id)
	if err != nil {
		return fmt.Errorf("deleting slugs: %w", err)
	}
	return nil
}
