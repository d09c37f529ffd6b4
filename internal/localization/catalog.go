// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localization

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/olegiv/ocms-core/internal/model"
)

// Catalog is an immutable snapshot of the active locales and the default
// locale. It answers locale lookups and rewrites URLs between locales.
type Catalog struct {
	defaultLocale string
	codes         []string
	locales       map[string]model.Locale
}

// NewCatalog builds a catalog from the active locales in display order.
func NewCatalog(defaultLocale string, active []model.Locale) *Catalog {
	c := &Catalog{
		defaultLocale: defaultLocale,
		codes:         make([]string, 0, len(active)),
		locales:       make(map[string]model.Locale, len(active)),
	}
	for _, l := range active {
		c.codes = append(c.codes, l.Code)
		c.locales[l.Code] = l
	}
	return c
}

// Default returns the default locale code.
func (c *Catalog) Default() string { return c.defaultLocale }

// Codes returns the active locale codes.
func (c *Catalog) Codes() []string { return slices.Clone(c.codes) }

// IsActive reports whether code is an active locale.
func (c *Catalog) IsActive(code string) bool {
	_, ok := c.locales[code]
	return ok
}

// Name returns the English name of an active locale.
func (c *Catalog) Name(code string) string { return c.locales[code].Name }

// Endonym returns the native name of an active locale.
func (c *Catalog) Endonym(code string) string { return c.locales[code].Endonym }

// Regional returns the regional code of an active locale, e.g. en-US.
func (c *Catalog) Regional(code string) string { return c.locales[code].Regional }

// Direction returns rtl or ltr. Unknown locales are ltr.
func (c *Catalog) Direction(code string) string {
	l, ok := c.locales[code]
	if !ok {
		return model.DirectionLTR
	}
	return l.Direction()
}

// Tag returns the BCP 47 tag of a locale, preferring its regional code.
func (c *Catalog) Tag(code string) language.Tag {
	if r := c.Regional(code); r != "" {
		if tag, err := language.Parse(r); err == nil {
			return tag
		}
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}

// FromPath returns the locale named by the first path segment and true, or
// the default locale and false when that segment is not an active locale.
func (c *Catalog) FromPath(path string) (string, bool) {
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if c.IsActive(segment) {
		return segment, true
	}
	return c.defaultLocale, false
}

// StripDefaultLocale removes a leading default locale segment from path.
func (c *Catalog) StripDefaultLocale(path string) string {
	trimmed := strings.TrimLeft(path, "/")
	switch {
	case trimmed == c.defaultLocale:
		trimmed = ""
	case strings.HasPrefix(trimmed, c.defaultLocale+"/"):
		trimmed = trimmed[len(c.defaultLocale)+1:]
	}
	return "/" + trimmed
}

// LocalizedURL rewrites raw so that it points to the same page in locale.
// An active locale prefix is replaced; the default locale gets no prefix.
// Query, fragment and absolute URL parts are kept. Absolute URLs without a
// scheme get https.
func (c *Catalog) LocalizedURL(raw, locale string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	segments := strings.Split(strings.TrimLeft(u.Path, "/"), "/")
	if c.IsActive(segments[0]) {
		segments = segments[1:]
	}
	rest := strings.Join(segments, "/")

	newPath := rest
	if locale != c.defaultLocale {
		newPath = locale
		if rest != "" {
			newPath += "/" + rest
		}
	}

	out := url.URL{
		Path:     "/" + strings.TrimLeft(newPath, "/"),
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}
	if u.Host != "" {
		out.Scheme = u.Scheme
		if out.Scheme == "" {
			out.Scheme = "https"
		}
		out.Host = u.Host
	}
	return out.String()
}
