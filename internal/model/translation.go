// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Entity types for slugs and translations
const (
	EntityTypePage = "page"
)

// Translation is the body of one translated attribute of an entity in one
// locale. (Locale, Key, TranslatableType, TranslatableID) is unique.
type Translation struct {
	ID               int64     `db:"id" json:"id"`
	Key              string    `db:"key" json:"key"`
	Body             string    `db:"body" json:"body"`
	Locale           string    `db:"locale" json:"locale"`
	TranslatableType string    `db:"translatable_type" json:"translatable_type"`
	TranslatableID   int64     `db:"translatable_id" json:"translatable_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// TranslationSet holds the translations of one entity: values buffered for
// the next sync and the rows loaded from the store.
// It is not safe for concurrent use.
type TranslationSet struct {
	pending map[string]map[string]string
	loaded  []Translation
	isSet   bool
}

// SetPending buffers body for attr in locale.
func (s *TranslationSet) SetPending(attr, locale, body string) {
	if s.pending == nil {
		s.pending = make(map[string]map[string]string)
	}
	s.pending[attr] = map[string]string{locale: body}
}

// SetPendingAll replaces the buffered bodies of attr with bodies.
func (s *TranslationSet) SetPendingAll(attr string, bodies map[string]string) {
	if s.pending == nil {
		s.pending = make(map[string]map[string]string)
	}
	m := make(map[string]string, len(bodies))
	for locale, body := range bodies {
		m[locale] = body
	}
	s.pending[attr] = m
}

// Pending returns the buffered body of attr in locale.
func (s *TranslationSet) Pending(attr, locale string) (string, bool) {
	body, ok := s.pending[attr][locale]
	return body, ok
}

// Loaded returns the loaded rows and whether they were loaded at all.
func (s *TranslationSet) Loaded() ([]Translation, bool) {
	return s.loaded, s.isSet
}

// SetLoaded stores rows loaded from the store.
func (s *TranslationSet) SetLoaded(rows []Translation) {
	s.loaded = rows
	s.isSet = true
}

// Unload forgets the loaded rows so the next read hits the store.
func (s *TranslationSet) Unload() {
	s.loaded = nil
	s.isSet = false
}
