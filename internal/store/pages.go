// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/ocms-core/internal/model"
)

const pageColumns = `pages.id, pages.metadata, pages.status, pages.published_at, pages.created_at, pages.updated_at`

// CreatePageParams holds the stored columns of a new page.
type CreatePageParams struct {
	Metadata    sql.NullString
	Status      model.PageStatus
	PublishedAt sql.NullTime
}

// CreatePage inserts a page and returns it.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	now := q.now()
	res, err := q.db.ExecContext(ctx, q.db.Rebind(`
		INSERT INTO pages (metadata, status, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		arg.Metadata, string(arg.Status), arg.PublishedAt, now, now)
	if err != nil {
		return model.Page{}, fmt.Errorf("creating page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{
		ID:          id,
		Metadata:    arg.Metadata,
		Status:      arg.Status,
		PublishedAt: arg.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetPage returns the page with id or sql.ErrNoRows.
func (q *Queries) GetPage(ctx context.Context, id int64) (model.Page, error) {
	var p model.Page
	err := sqlx.GetContext(ctx, q.db, &p, q.db.Rebind(`SELECT `+pageColumns+` FROM pages WHERE id = ?`), id)
	return p, err
}

// UpdatePageParams holds the stored columns of an existing page.
type UpdatePageParams struct {
	ID          int64
	Metadata    sql.NullString
	Status      model.PageStatus
	PublishedAt sql.NullTime
}

// UpdatePage overwrites the stored columns of a page. MySQL reports unchanged
// rows as unaffected, so a missing page is not detected here.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(`
		UPDATE pages SET metadata = ?, status = ?, published_at = ?, updated_at = ? WHERE id = ?`),
		arg.Metadata, string(arg.Status), arg.PublishedAt, q.now(), arg.ID)
	if err != nil {
		return fmt.Errorf("updating page %d: %w", arg.ID, err)
	}
	return nil
}

// DeletePage removes a page row. Slugs and translations are removed separately.
func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, q.db.Rebind(`DELETE FROM pages WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}
	return requireAffected(res)
}

// ListPagesByTranslation returns all pages ordered by the body of attr in
// locale. Pages without that translation sort as NULL.
func (q *Queries) ListPagesByTranslation(ctx context.Context, attr, locale string, desc bool) ([]model.Page, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}

	var pages []model.Page
	err := sqlx.SelectContext(ctx, q.db, &pages, q.db.Rebind(`
		SELECT `+pageColumns+` FROM pages
		LEFT JOIN translations ON translations.translatable_id = pages.id
			AND translations.translatable_type = ?
			AND translations.`+"`key`"+` = ?
			AND translations.locale = ?
		ORDER BY translations.body `+order+`, pages.id`),
		model.EntityTypePage, attr, locale)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	return pages, nil
}

// SearchPagesByTranslation returns pages whose attr in locale contains term.
func (q *Queries) SearchPagesByTranslation(ctx context.Context, attr, locale, term string) ([]model.Page, error) {
	var pages []model.Page
	err := sqlx.SelectContext(ctx, q.db, &pages, q.db.Rebind(`
		SELECT `+pageColumns+` FROM pages
		WHERE EXISTS (
			SELECT 1 FROM translations
			WHERE translations.translatable_id = pages.id
				AND translations.translatable_type = ?
				AND translations.`+"`key`"+` = ?
				AND translations.locale = ?
				AND translations.body LIKE ? ESCAPE '!'
		)
		ORDER BY pages.id`),
		model.EntityTypePage, attr, locale, "%"+escapeLike(term)+"%")
	if err != nil {
		return nil, fmt.Errorf("searching pages: %w", err)
	}
	return pages, nil
}

// ListPublishedPages returns pages published at or before now.
func (q *Queries) ListPublishedPages(ctx context.Context) ([]model.Page, error) {
	var pages []model.Page
	err := sqlx.SelectContext(ctx, q.db, &pages, q.db.Rebind(`
		SELECT `+pageColumns+` FROM pages
		WHERE status = ? AND published_at IS NOT NULL AND published_at <= ?
		ORDER BY published_at DESC, id DESC`),
		string(model.PageStatusPublished), q.now())
	if err != nil {
		return nil, fmt.Errorf("listing published pages: %w", err)
	}
	return pages, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
