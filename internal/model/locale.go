// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Locale text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Locale represents a content locale. Only active locales take part in slug
// and translation generation.
type Locale struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`         // en, fr, fr-CA
	Name      string    `db:"name" json:"name"`         // English, French (Canadian)
	Endonym   string    `db:"endonym" json:"endonym"`   // English, français canadien
	Script    string    `db:"script" json:"script"`     // ISO 15924: Latn, Cyrl, Arab
	Regional  string    `db:"regional" json:"regional"` // en-US, fr-CA
	RTL       bool      `db:"rtl" json:"rtl"`
	Active    bool      `db:"active" json:"active"`
	Published bool      `db:"published" json:"published"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Direction returns the text direction of the locale.
func (l *Locale) Direction() string {
	if l.RTL {
		return DirectionRTL
	}
	return DirectionLTR
}

// IsRTL returns true if the locale is right-to-left.
func (l *Locale) IsRTL() bool {
	return l.RTL
}
