// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// Queries runs statements on a database handle or a transaction.
type Queries struct {
	db  sqlx.ExtContext
	now func() time.Time
}

// New returns queries bound to db, which may be a *sqlx.DB or *sqlx.Tx.
func New(db sqlx.ExtContext) *Queries {
	return &Queries{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx *sqlx.Tx) *Queries {
	return &Queries{db: tx, now: q.now}
}

// in expands a query with an IN (?) clause and rebinds it for the driver.
func (q *Queries) in(query string, args ...any) (string, []any, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return q.db.Rebind(query), args, nil
}
