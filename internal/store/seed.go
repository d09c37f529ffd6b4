// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Seed activates the given locale codes. Locales missing from the catalogue
// are an error; locales already active are left alone.
func Seed(ctx context.Context, db *sqlx.DB, activeCodes []string) error {
	return RunInTx(ctx, db, func(q *Queries) error {
		for _, code := range activeCodes {
			l, err := q.GetLocale(ctx, code)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("locale %q is not in the catalogue", code)
			}
			if err != nil {
				return fmt.Errorf("checking locale %s: %w", code, err)
			}
			if l.Active {
				continue
			}

			if err := q.SetLocaleActive(ctx, code, true); err != nil {
				return err
			}
			slog.Info("activated locale", "code", code, "name", l.Name)
		}
		return nil
	})
}
