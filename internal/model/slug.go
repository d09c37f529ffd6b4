// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Slug is the URL-safe identifier of an entity in one locale.
// (Slug, Locale) is unique; an entity owns at most one slug per locale.
type Slug struct {
	ID            int64     `db:"id" json:"id"`
	Slug          string    `db:"slug" json:"slug"`
	Locale        string    `db:"locale" json:"locale"`
	SluggableType string    `db:"sluggable_type" json:"sluggable_type"`
	SluggableID   int64     `db:"sluggable_id" json:"sluggable_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SlugMap indexes slugs by locale.
type SlugMap map[string]string

// SlugsByLocale builds a locale to slug map from rows.
func SlugsByLocale(slugs []Slug) SlugMap {
	m := make(SlugMap, len(slugs))
	for _, s := range slugs {
		m[s.Locale] = s.Slug
	}
	return m
}
