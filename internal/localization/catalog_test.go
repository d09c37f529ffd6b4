package localization

import (
	"context"
	"testing"

	"github.com/olegiv/ocms-core/internal/model"
)

func testCatalog() *Catalog {
	return NewCatalog("en", []model.Locale{
		{Code: "en", Name: "English", Endonym: "English", Regional: "en-US"},
		{Code: "nl", Name: "Dutch", Endonym: "Nederlands", Regional: "nl-NL"},
		{Code: "ar", Name: "Arabic", Endonym: "العربية", Regional: "ar-SA", RTL: true},
		{Code: "fr-CA", Name: "French (Canadian)", Regional: "fr-CA"},
	})
}

func TestLocalizedURL(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name   string
		url    string
		locale string
		want   string
	}{
		{"adds prefix", "/dashboard", "nl", "/nl/dashboard"},
		{"removes default locale", "/en/dashboard", "en", "/dashboard"},
		{"replaces active prefix", "/nl/dashboard", "ar", "/ar/dashboard"},
		{"keeps unknown prefix", "/de/dashboard", "nl", "/nl/de/dashboard"},
		{"root to default", "/", "en", "/"},
		{"root to other", "/", "nl", "/nl"},
		{"keeps query and fragment", "/en/list?page=2#top", "nl", "/nl/list?page=2#top"},
		{"absolute url", "https://example.com/en/dashboard", "nl", "https://example.com/nl/dashboard"},
		{"absolute url with port", "http://example.com:8080/nl/a/b", "en", "http://example.com:8080/a/b"},
		{"scheme-relative url", "//example.com/dashboard", "fr-CA", "https://example.com/fr-CA/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.LocalizedURL(tt.url, tt.locale); got != tt.want {
				t.Errorf("LocalizedURL(%q, %q) = %q, want %q", tt.url, tt.locale, got, tt.want)
			}
		})
	}
}

func TestStripDefaultLocale(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		path string
		want string
	}{
		{"/en/dashboard", "/dashboard"},
		{"/en", "/"},
		{"/en/", "/"},
		{"/english", "/english"},
		{"/nl/dashboard", "/nl/dashboard"},
		{"en/a/b", "/a/b"},
	}

	for _, tt := range tests {
		if got := c.StripDefaultLocale(tt.path); got != tt.want {
			t.Errorf("StripDefaultLocale(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	c := testCatalog()

	if got, ok := c.FromPath("/nl/pages/x"); !ok || got != "nl" {
		t.Errorf("FromPath(/nl/...) = %q, %v", got, ok)
	}
	if got, ok := c.FromPath("/de/pages/x"); ok || got != "en" {
		t.Errorf("FromPath(/de/...) = %q, %v", got, ok)
	}
	if got, ok := c.FromPath("/"); ok || got != "en" {
		t.Errorf("FromPath(/) = %q, %v", got, ok)
	}

	if c.Direction("ar") != model.DirectionRTL || c.Direction("en") != model.DirectionLTR {
		t.Error("unexpected direction")
	}
	if c.Direction("zz") != model.DirectionLTR {
		t.Error("unknown locale should be ltr")
	}
	if c.Name("nl") != "Dutch" || c.Endonym("nl") != "Nederlands" || c.Regional("nl") != "nl-NL" {
		t.Error("unexpected nl lookups")
	}
	if c.Tag("en").String() != "en-US" {
		t.Errorf("Tag(en) = %s", c.Tag("en"))
	}
	if got := len(c.Codes()); got != 4 {
		t.Errorf("Codes() has %d entries", got)
	}
	if c.Default() != "en" {
		t.Errorf("Default() = %q", c.Default())
	}
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFrom(ctx, "en"); got != "en" {
		t.Errorf("LocaleFrom(empty) = %q", got)
	}

	ctx = WithLocale(ctx, "nl")
	if got := LocaleFrom(ctx, "en"); got != "nl" {
		t.Errorf("LocaleFrom = %q, want nl", got)
	}
}

func TestStringValue(t *testing.T) {
	type named string

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "a", "a"},
		{"enum", model.PageStatusDraft, "draft"},
		{"named string", named("b"), "b"},
		{"int", 3, ""},
		{"bool", true, ""},
	}

	for _, tt := range tests {
		if got := stringValue(tt.in); got != tt.want {
			t.Errorf("%s: stringValue() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
