// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/ocms-core/internal/model"
	"github.com/olegiv/ocms-core/internal/util"
)

// PageInput holds the editable fields of a page. Title and Description map
// locale codes to bodies. Slugs, when set, replaces the generated slugs of
// the listed locales.
type PageInput struct {
	Title       map[string]string `json:"title"`
	Description map[string]string `json:"description"`
	Status      model.PageStatus  `json:"status"`
	PublishedAt *time.Time        `json:"published_at"`
	Metadata    map[string]any    `json:"metadata"`
	Slugs       map[string]string `json:"slugs"`
}

// ValidationError lists invalid input fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

const msgInactiveLocale = "Locale is unknown or inactive"

// validate checks in against the active locale codes. Every locale key of
// Title, Description and Slugs must be active. requireTitle is set for new
// pages, which need a title in at least one active locale.
func (in *PageInput) validate(active []string, requireTitle bool) error {
	fields := make(map[string]string)

	switch {
	case in.Status == "" || in.Status.Valid():
	case in.Status == model.PageStatusScheduled:
		if in.PublishedAt == nil {
			fields["published_at"] = "Publication time is required for scheduled pages"
		}
	default:
		fields["status"] = fmt.Sprintf("Unknown status %q", in.Status)
	}

	checkLocales(fields, "title", in.Title, active)
	checkLocales(fields, "description", in.Description, active)
	if requireTitle && !hasBody(in.Title, active) {
		fields["title"] = "Title is required"
	}

	for locale, slug := range in.Slugs {
		switch {
		case locale == "":
			fields["slugs"] = "Slug locale is required"
		case !slices.Contains(active, locale):
			fields["slugs."+locale] = msgInactiveLocale
		case !util.IsValidSlug(slug):
			fields["slugs."+locale] = "Slug must contain only lowercase letters, numbers and hyphens"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkLocales(fields map[string]string, attr string, bodies map[string]string, active []string) {
	for locale := range bodies {
		if !slices.Contains(active, locale) {
			fields[attr+"."+locale] = msgInactiveLocale
		}
	}
}

// hasBody reports whether bodies has a non-blank value in an active locale.
func hasBody(bodies map[string]string, active []string) bool {
	for _, locale := range active {
		if strings.TrimSpace(bodies[locale]) != "" {
			return true
		}
	}
	return false
}

// publication maps a requested status to the stored status and publication
// time. Scheduled pages are stored as published with a future time.
// current is the stored publication time of an existing page; a page that
// is already published keeps it.
func publication(status model.PageStatus, at *time.Time, current sql.NullTime, wasPublished bool, now time.Time) (model.PageStatus, sql.NullTime) {
	switch status {
	case model.PageStatusPublished:
		if wasPublished && current.Valid && !current.Time.After(now) {
			return model.PageStatusPublished, current
		}
		return model.PageStatusPublished, util.NullTimeFromValue(now)
	case model.PageStatusScheduled:
		if at == nil {
			return model.PageStatusPublished, util.NullTimeFromValue(now)
		}
		return model.PageStatusPublished, util.NullTimeFromValue(at.UTC())
	case model.PageStatusPrivate:
		return model.PageStatusPrivate, sql.NullTime{}
	}
	return model.PageStatusDraft, sql.NullTime{}
}
