// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PageStatus is the stored publication status of a page.
type PageStatus string

// Page statuses
const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
	PageStatusPrivate   PageStatus = "private"
	// PageStatusScheduled is never stored. It is computed for published pages
	// with a future publication time.
	PageStatusScheduled PageStatus = "scheduled"
)

// Valid reports whether s can be stored.
func (s PageStatus) Valid() bool {
	switch s {
	case PageStatusDraft, PageStatusPublished, PageStatusPrivate:
		return true
	}
	return false
}

// Value returns the raw status value.
func (s PageStatus) Value() string {
	return string(s)
}

// Label returns the human readable status name.
func (s PageStatus) Label() string {
	switch s {
	case PageStatusDraft:
		return "Draft"
	case PageStatusPublished:
		return "Published"
	case PageStatusPrivate:
		return "Private"
	case PageStatusScheduled:
		return "Scheduled"
	}
	return string(s)
}

// Color returns the badge color of the status.
func (s PageStatus) Color() string {
	switch s {
	case PageStatusDraft:
		return "zinc"
	case PageStatusPublished:
		return "green"
	case PageStatusPrivate:
		return "orange"
	case PageStatusScheduled:
		return "blue"
	}
	return "zinc"
}

// Page attributes
const (
	PageAttrTitle       = "title"
	PageAttrDescription = "description"
	PageAttrStatus      = "status"
)

// Page is a CMS page with translated title and description and one slug per
// locale derived from the title.
type Page struct {
	ID          int64          `db:"id" json:"id"`
	Metadata    sql.NullString `db:"metadata" json:"-"`
	Status      PageStatus     `db:"status" json:"status"`
	PublishedAt sql.NullTime   `db:"published_at" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	translations TranslationSet
}

// Kind returns the entity type used for slugs and translations.
func (p *Page) Kind() string { return EntityTypePage }

// EntityID returns the page ID.
func (p *Page) EntityID() int64 { return p.ID }

// TranslatedAttributes lists the attributes stored as translations.
func (p *Page) TranslatedAttributes() []string {
	return []string{PageAttrTitle, PageAttrDescription}
}

// Translations returns the translation set of the page.
func (p *Page) Translations() *TranslationSet { return &p.translations }

// SlugFields lists the attributes the slug is built from.
func (p *Page) SlugFields() []string {
	return []string{PageAttrTitle}
}

// SlugValue returns a non-translated attribute usable as slug source.
func (p *Page) SlugValue(field, _ string) (any, bool) {
	switch field {
	case PageAttrStatus:
		return p.Status, true
	}
	return nil, false
}

// ComputedStatus returns scheduled for published pages whose publication
// time is in the future, and the stored status otherwise.
func (p *Page) ComputedStatus(now time.Time) PageStatus {
	if p.Status == PageStatusPublished && p.PublishedAt.Valid && p.PublishedAt.Time.After(now) {
		return PageStatusScheduled
	}
	return p.Status
}

// IsPublished returns true if the page is visible at now.
func (p *Page) IsPublished(now time.Time) bool {
	return p.Status == PageStatusPublished && p.PublishedAt.Valid && !p.PublishedAt.Time.After(now)
}

// MetadataMap decodes the JSON metadata. Invalid or missing metadata yields
// an empty map.
func (p *Page) MetadataMap() map[string]any {
	m := map[string]any{}
	if !p.Metadata.Valid || p.Metadata.String == "" {
		return m
	}
	if err := json.Unmarshal([]byte(p.Metadata.String), &m); err != nil {
		return map[string]any{}
	}
	return m
}

// SetMetadata encodes m as the page metadata. A nil map clears it.
func (p *Page) SetMetadata(m map[string]any) error {
	if m == nil {
		p.Metadata = sql.NullString{}
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	p.Metadata = sql.NullString{String: string(b), Valid: true}
	return nil
}
