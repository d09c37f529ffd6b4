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

const translationColumns = "id, `key`, body, locale, translatable_type, translatable_id, created_at, updated_at"

// UpsertTranslation sets the body of key for (kind, id) in locale.
func (q *Queries) UpsertTranslation(ctx context.Context, kind string, id int64, locale, key, body string) error {
	now := q.now()

	var rowID int64
	err := sqlx.GetContext(ctx, q.db, &rowID, q.db.Rebind(
		"SELECT id FROM translations WHERE locale = ? AND `key` = ? AND translatable_type = ? AND translatable_id = ?"),
		locale, key, kind, id)
	switch {
	case err == nil:
		_, err = q.db.ExecContext(ctx, q.db.Rebind(`UPDATE translations SET body = ?, updated_at = ? WHERE id = ?`),
			body, now, rowID)
	case errors.Is(err, sql.ErrNoRows):
		_, err = q.db.ExecContext(ctx, q.db.Rebind(
			"INSERT INTO translations (`key`, body, locale, translatable_type, translatable_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"),
			key, body, locale, kind, id, now, now)
	}
	if err != nil {
		return fmt.Errorf("saving translation %s (%s): %w", key, locale, err)
	}
	return nil
}

// ListTranslations returns the translations of (kind, id) ordered by id.
func (q *Queries) ListTranslations(ctx context.Context, kind string, id int64) ([]model.Translation, error) {
	var rows []model.Translation
	err := sqlx.SelectContext(ctx, q.db, &rows, q.db.Rebind(
		"SELECT "+translationColumns+" FROM translations WHERE translatable_type = ? AND translatable_id = ? ORDER BY id"),
		kind, id)
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	return rows, nil
}

// ListTranslationsFor returns the translations of all given entities of kind
// ordered by id.
func (q *Queries) ListTranslationsFor(ctx context.Context, kind string, ids []int64) ([]model.Translation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := q.in(
		"SELECT "+translationColumns+" FROM translations WHERE translatable_type = ? AND translatable_id IN (?) ORDER BY id",
		kind, ids)
	if err != nil {
		return nil, err
	}

	var rows []model.Translation
	if err := sqlx.SelectContext(ctx, q.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	return rows, nil
}

// DeleteTranslations removes every translation of (kind, id).
func (q *Queries) DeleteTranslations(ctx context.Context, kind string, id int64) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(`DELETE FROM translations WHERE translatable_type = ? AND translatable_id = ?`),
		kind, id)
	if err != nil {
		return fmt.Errorf("deleting translations: %w", err)
	}
	return nil
}
