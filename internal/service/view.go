// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"time"

	"github.com/olegiv/ocms-core/internal/model"
	"github.com/olegiv/ocms-core/internal/util"
)

// PageView is a page rendered in one locale.
type PageView struct {
	ID          int64            `json:"id"`
	Locale      string           `json:"locale,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Slug        string           `json:"slug"`
	Slugs       model.SlugMap    `json:"slugs"`
	Status      model.PageStatus `json:"status"`
	StatusLabel string           `json:"status_label"`
	StatusColor string           `json:"status_color"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	Metadata    map[string]any   `json:"metadata"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IsPublic reports whether the page is visible to anonymous readers.
func (v *PageView) IsPublic() bool {
	return v.Status == model.PageStatusPublished
}

// render builds the view of p in locale. Translated attributes fall back to
// another locale when empty in locale.
func (s *PageService) render(ctx context.Context, p *model.Page, slugs model.SlugMap, locale string, now time.Time) (PageView, error) {
	title, err := s.resolver.ReadTranslatedAttribute(ctx, p, model.PageAttrTitle, locale)
	if err != nil {
		return PageView{}, err
	}
	description, err := s.resolver.ReadTranslatedAttribute(ctx, p, model.PageAttrDescription, locale)
	if err != nil {
		return PageView{}, err
	}
	if slugs == nil {
		slugs = model.SlugMap{}
	}

	status := p.ComputedStatus(now)
	return PageView{
		ID:          p.ID,
		Locale:      locale,
		Title:       title,
		Description: description,
		Slug:        slugs[locale],
		Slugs:       slugs,
		Status:      status,
		StatusLabel: status.Label(),
		StatusColor: status.Color(),
		PublishedAt: util.TimePtr(p.PublishedAt),
		Metadata:    p.MetadataMap(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}
